// Package bytecode extracts the defining class name and the set of
// referenced class names from one compiled class file, following the
// JVM class file format only as deeply as is needed to recover symbolic
// references — no bytecode verification or semantic analysis is performed.
package bytecode

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/tautenhahn/depengine/internal/apperr"
)

const magic = 0xCAFEBABE

// constant pool tags (JVM class file format).
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// mainDescriptor is the descriptor of `public static void main(String[])`.
const mainDescriptor = "([Ljava/lang/String;)V"

const accPublic = 0x0001
const accStatic = 0x0008

// Class is the result of extracting one class file: its defining name and
// the set of qualified class names it references.
type Class struct {
	// Name is the defining (this_class) qualified class name.
	Name string
	// References is the set of referenced qualified class names, with the
	// defining class itself removed. Platform classes such as
	// java.lang.Object are kept; dropping them is left to internal/filter.
	References map[string]struct{}
	// HasMainMethod reports whether the class declares a public static
	// void main(String[]) method.
	HasMainMethod bool
}

// Extract parses one class byte stream and returns its defining name and
// reference set. BadClassFile errors are returned (never panics) for
// truncated or malformed input.
func Extract(r io.Reader) (Class, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Class{}, apperr.Wrap(apperr.BadClassFile, "reading class bytes", err)
	}
	c := &cursor{data: data}

	got, err := c.u4()
	if err != nil {
		return Class{}, badClass("reading magic", err)
	}
	if got != magic {
		return Class{}, apperr.New(apperr.BadClassFile, "bad magic number")
	}
	if _, err := c.u2(); err != nil { // minor_version
		return Class{}, badClass("reading minor version", err)
	}
	if _, err := c.u2(); err != nil { // major_version
		return Class{}, badClass("reading major version", err)
	}

	pool, err := readConstantPool(c)
	if err != nil {
		return Class{}, err
	}

	if _, err := c.u2(); err != nil { // access_flags
		return Class{}, badClass("reading access flags", err)
	}
	thisClassIdx, err := c.u2()
	if err != nil {
		return Class{}, badClass("reading this_class", err)
	}
	superClassIdx, err := c.u2()
	if err != nil {
		return Class{}, badClass("reading super_class", err)
	}

	refs := make(map[string]struct{})

	thisName, ok := pool.className(thisClassIdx)
	if !ok {
		return Class{}, apperr.New(apperr.BadClassFile, "this_class does not resolve to a class name")
	}
	if superClassIdx != 0 {
		if name, ok := pool.className(superClassIdx); ok {
			addReference(refs, name)
		}
	}

	interfaceCount, err := c.u2()
	if err != nil {
		return Class{}, badClass("reading interfaces_count", err)
	}
	for i := 0; i < int(interfaceCount); i++ {
		idx, err := c.u2()
		if err != nil {
			return Class{}, badClass("reading interface index", err)
		}
		if name, ok := pool.className(idx); ok {
			addReference(refs, name)
		}
	}

	// Every Class constant in the pool is itself a reference, per spec.
	for _, name := range pool.allClassNames() {
		addReference(refs, name)
	}

	hasMain := false

	fieldCount, err := c.u2()
	if err != nil {
		return Class{}, badClass("reading fields_count", err)
	}
	for i := 0; i < int(fieldCount); i++ {
		if err := skipMember(c, pool, refs, false, nil); err != nil {
			return Class{}, err
		}
	}

	methodCount, err := c.u2()
	if err != nil {
		return Class{}, badClass("reading methods_count", err)
	}
	for i := 0; i < int(methodCount); i++ {
		isMain := false
		if err := skipMember(c, pool, refs, true, &isMain); err != nil {
			return Class{}, err
		}
		if isMain {
			hasMain = true
		}
	}

	delete(refs, thisName)

	return Class{Name: thisName, References: refs, HasMainMethod: hasMain}, nil
}

// skipMember reads one field_info or method_info: access_flags, name_index,
// descriptor_index, then skips attributes by their declared length. The
// descriptor is scanned for class references. If isMethod and checkMain is
// non-nil, *checkMain is set when this member is `public static void
// main(String[])`.
func skipMember(c *cursor, pool constantPool, refs map[string]struct{}, isMethod bool, checkMain *bool) error {
	access, err := c.u2()
	if err != nil {
		return badClass("reading member access flags", err)
	}
	nameIdx, err := c.u2()
	if err != nil {
		return badClass("reading member name index", err)
	}
	descIdx, err := c.u2()
	if err != nil {
		return badClass("reading member descriptor index", err)
	}

	desc, _ := pool.utf8(descIdx)
	for _, name := range referencesInDescriptor(desc) {
		addReference(refs, name)
	}

	if isMethod && checkMain != nil {
		name, _ := pool.utf8(nameIdx)
		if name == "main" && desc == mainDescriptor &&
			access&accPublic != 0 && access&accStatic != 0 {
			*checkMain = true
		}
	}

	attrCount, err := c.u2()
	if err != nil {
		return badClass("reading member attributes_count", err)
	}
	for i := 0; i < int(attrCount); i++ {
		if err := skipAttribute(c); err != nil {
			return err
		}
	}
	return nil
}

// skipAttribute reads one attribute's name index and length, then skips its body.
func skipAttribute(c *cursor) error {
	if _, err := c.u2(); err != nil { // attribute_name_index
		return badClass("reading attribute name index", err)
	}
	length, err := c.u4()
	if err != nil {
		return badClass("reading attribute length", err)
	}
	if err := c.skip(int(length)); err != nil {
		return badClass("skipping attribute body", err)
	}
	return nil
}

// addReference records name as a reference unless it is empty. Primitives
// and void never reach it (the name resolvers already discard them), and no
// package is filtered out here: that is left to internal/filter.
func addReference(refs map[string]struct{}, name string) {
	if name == "" {
		return
	}
	refs[name] = struct{}{}
}

// referencesInDescriptor scans a field or method descriptor
// ("(args)ret" or a bare type) for every "Lname;" occurrence and returns
// the referenced qualified names, translating internal '/' to '.'.
func referencesInDescriptor(desc string) []string {
	var names []string
	i := 0
	for i < len(desc) {
		switch desc[i] {
		case 'L':
			end := strings.IndexByte(desc[i:], ';')
			if end < 0 {
				return names
			}
			internal := desc[i+1 : i+end]
			names = append(names, strings.ReplaceAll(internal, "/", "."))
			i += end + 1
		default:
			i++
		}
	}
	return names
}

// classNameFromConstant resolves the name carried by a CONSTANT_Class entry's
// referenced Utf8 string into a qualified class name: internal form
// "a/b/C" is an object class; a leading '[' denotes an array descriptor,
// stripped and then resolved as "Lname;" or discarded if primitive.
func classNameFromConstant(raw string) (string, bool) {
	s := raw
	for strings.HasPrefix(s, "[") {
		s = s[1:]
	}
	if s == "" {
		return "", false
	}
	if s[0] == 'L' {
		if !strings.HasSuffix(s, ";") {
			return "", false
		}
		internal := s[1 : len(s)-1]
		return strings.ReplaceAll(internal, "/", "."), true
	}
	if raw != s {
		// was an array descriptor, remaining is a primitive type code
		return "", false
	}
	return strings.ReplaceAll(s, "/", "."), true
}

func badClass(msg string, err error) *apperr.Error {
	return apperr.Wrap(apperr.BadClassFile, msg, err)
}

// cursor is a bounds-checked reader over an in-memory class file buffer.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) u1() (byte, error) {
	if c.pos+1 > len(c.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) u2() (uint16, error) {
	if c.pos+2 > len(c.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) u4() (uint32, error) {
	if c.pos+4 > len(c.data) {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	if n < 0 || c.pos+n > len(c.data) {
		return io.ErrUnexpectedEOF
	}
	c.pos += n
	return nil
}
