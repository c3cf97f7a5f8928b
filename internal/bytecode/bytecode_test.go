package bytecode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// classBuilder assembles a minimal, valid class file byte-for-byte so the
// extractor can be tested without a real javac toolchain.
type classBuilder struct {
	utf8 map[string]uint16
	next uint16
}

func newClassBuilder() *classBuilder {
	return &classBuilder{utf8: make(map[string]uint16), next: 1}
}

// internUtf8 returns the constant pool index for s, creating it on first use.
// Must be called before header() assembles the pool.
func (b *classBuilder) internUtf8(s string) uint16 {
	if idx, ok := b.utf8[s]; ok {
		return idx
	}
	idx := b.next
	b.next++
	b.utf8[s] = idx
	return idx
}

type cpEntry struct {
	tag  byte
	utf8 string // for tagUtf8
	ref  uint16 // for tagClass: name_index
}

// build assembles the full class file given the this/super class names,
// extra standalone Class constants (by name), and one method with the
// given descriptor.
func build(t *testing.T, thisClass, superClass string, extraClassRefs []string, methodName, methodDescriptor string, methodAccess uint16) []byte {
	t.Helper()
	b := newClassBuilder()

	thisUtf8 := b.internUtf8(thisClass)
	superUtf8 := b.internUtf8(superClass)
	extraUtf8 := make([]uint16, len(extraClassRefs))
	for i, name := range extraClassRefs {
		extraUtf8[i] = b.internUtf8(name)
	}
	methodNameUtf8 := b.internUtf8(methodName)
	methodDescUtf8 := b.internUtf8(methodDescriptor)

	// Now assign Class entries after all Utf8 entries, tracking final indices.
	var entries []cpEntry
	// Reconstruct insertion order 1..next-1.
	order := make([]string, b.next-1)
	for s, idx := range b.utf8 {
		order[idx-1] = s
	}
	for _, s := range order {
		entries = append(entries, cpEntry{tag: tagUtf8, utf8: s})
	}

	classIdxFor := func(utf8Idx uint16) uint16 {
		entries = append(entries, cpEntry{tag: tagClass, ref: utf8Idx})
		return uint16(len(entries))
	}

	thisClassIdx := classIdxFor(thisUtf8)
	superClassIdx := classIdxFor(superUtf8)
	extraClassIdx := make([]uint16, len(extraUtf8))
	for i, u := range extraUtf8 {
		extraClassIdx[i] = classIdxFor(u)
	}
	_ = extraClassIdx

	var body bytes.Buffer
	write := func(vals ...interface{}) {
		for _, v := range vals {
			switch x := v.(type) {
			case uint16:
				_ = binary.Write(&body, binary.BigEndian, x)
			case uint32:
				_ = binary.Write(&body, binary.BigEndian, x)
			case byte:
				body.WriteByte(x)
			}
		}
	}

	write(uint32(magic))
	write(uint16(0), uint16(52)) // minor, major

	write(uint16(len(entries) + 1)) // constant_pool_count
	for _, e := range entries {
		switch e.tag {
		case tagUtf8:
			write(byte(tagUtf8))
			write(uint16(len(e.utf8)))
			body.WriteString(e.utf8)
		case tagClass:
			write(byte(tagClass))
			write(e.ref)
		}
	}

	write(uint16(0))           // access_flags
	write(thisClassIdx)        // this_class
	write(superClassIdx)       // super_class
	write(uint16(0))           // interfaces_count
	write(uint16(0))           // fields_count
	write(uint16(1))           // methods_count
	write(methodAccess)        // method access_flags
	write(methodNameUtf8)      // method name_index
	write(methodDescUtf8)      // method descriptor_index
	write(uint16(0))           // method attributes_count
	write(uint16(0))           // class attributes_count

	return body.Bytes()
}

func TestExtractDescriptorAndArrayReferences(t *testing.T) {
	// Class P.Q whose constant pool references java/lang/Object, P/R,
	// [LP/S;, and a method descriptor (LP/T;)LP/U;.
	data := build(t, "P/Q", "java/lang/Object", []string{"P/R", "[LP/S;"}, "m", "(LP/T;)LP/U;", 0)

	got, err := Extract(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Name != "P.Q" {
		t.Errorf("Name = %q, want P.Q", got.Name)
	}

	want := []string{"java.lang.Object", "P.R", "P.S", "P.T", "P.U"}
	for _, w := range want {
		if _, ok := got.References[w]; !ok {
			t.Errorf("References missing %q; got %v", w, got.References)
		}
	}
	if _, ok := got.References["P.Q"]; ok {
		t.Error("self-reference P.Q should have been removed")
	}
	if len(got.References) != len(want) {
		t.Errorf("References = %v, want exactly %v", got.References, want)
	}
}

func TestExtractSelfOnlyReferenceProducesNoArcs(t *testing.T) {
	data := build(t, "P/Q", "java/lang/Object", nil, "m", "()V", 0)
	got, err := Extract(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// Only the super-class reference should remain; a class never ends up
	// referencing itself.
	if _, ok := got.References["P.Q"]; ok {
		t.Error("defining class must not appear in its own reference set")
	}
}

func TestExtractDetectsMainMethod(t *testing.T) {
	data := build(t, "app/Main", "java/lang/Object", nil, "main", "([Ljava/lang/String;)V", accPublic|accStatic)
	got, err := Extract(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !got.HasMainMethod {
		t.Error("expected HasMainMethod to be true for public static void main(String[])")
	}
}

func TestExtractRejectsNonStaticMain(t *testing.T) {
	data := build(t, "app/Main", "java/lang/Object", nil, "main", "([Ljava/lang/String;)V", accPublic)
	got, err := Extract(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.HasMainMethod {
		t.Error("expected HasMainMethod to be false when main is not static")
	}
}

func TestExtractBadMagic(t *testing.T) {
	_, err := Extract(bytes.NewReader([]byte{0, 0, 0, 0}))
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestExtractTruncated(t *testing.T) {
	data := build(t, "P/Q", "java/lang/Object", nil, "m", "()V", 0)
	_, err := Extract(bytes.NewReader(data[:len(data)-4]))
	if err == nil {
		t.Fatal("expected error for truncated class file")
	}
}

func TestReferencesInDescriptor(t *testing.T) {
	got := referencesInDescriptor("(LP/T;I[LP/S;)LP/U;")
	want := map[string]bool{"P.T": true, "P.S": true, "P.U": true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want keys of %v", got, want)
	}
	for _, g := range got {
		if !want[g] {
			t.Errorf("unexpected reference %q", g)
		}
	}
}

func TestClassNameFromConstant(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"a/b/C", "a.b.C", true},
		{"[La/b/C;", "a.b.C", true},
		{"[[I", "", false},
		{"[I", "", false},
	}
	for _, c := range cases {
		got, ok := classNameFromConstant(c.raw)
		if ok != c.ok || got != c.want {
			t.Errorf("classNameFromConstant(%q) = (%q, %v), want (%q, %v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}
