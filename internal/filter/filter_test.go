package filter

import "testing"

func TestDefaultsIgnoreJavaPlatform(t *testing.T) {
	f := New()
	cases := map[string]bool{
		"java.lang.Object":   true,
		"javax.swing.JPanel": false, // "java\..*" does not match "javax"
		"app.Main":           false,
	}
	for name, want := range cases {
		if got := f.IsIgnoredClass(name); got != want {
			t.Errorf("IsIgnoredClass(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDefaultsIgnoreModuleInfoAndMetaInf(t *testing.T) {
	f := New()
	if !f.IsIgnoredClass("com.example.module-info") {
		t.Error("expected module-info to be ignored")
	}
	if !f.IsIgnoredClass("META-INF.MANIFEST") {
		t.Error("expected META-INF.* to be ignored")
	}
}

func TestDefaultsFocusOnDirectories(t *testing.T) {
	f := New()
	if !f.IsInFocus("dir:/home/project/classes") {
		t.Error("expected dir: containers to be in focus")
	}
	if f.IsInFocus("jar:commons-lang_jar") {
		t.Error("expected archive containers to not be in focus by default")
	}
}

func TestAddIgnoredSourceIsWholeMatch(t *testing.T) {
	f := New()
	f.AddIgnoredSource(`ignored`)
	if f.IsIgnoredSource("not-ignored-exactly") {
		t.Error("pattern should require a whole match, not a substring match")
	}
	if !f.IsIgnoredSource("ignored") {
		t.Error("expected exact match to be ignored")
	}
}

func TestAddFocusExtendsDefaults(t *testing.T) {
	f := New()
	f.AddFocus(`app\..*`)
	if !f.IsInFocus("app.Main") {
		t.Error("expected app.* to be in focus after AddFocus")
	}
	if !f.IsInFocus("dir:/x") {
		t.Error("default focus rule should still apply")
	}
}
