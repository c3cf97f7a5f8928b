package bytecode

import "github.com/tautenhahn/depengine/internal/apperr"

// constantPool holds the two entry kinds the extractor needs: Utf8 string
// values and Class entries' name_index, keyed by their 1-based constant
// pool index. Every other entry kind is skipped by size but not retained.
type constantPool struct {
	utf8s      map[uint16]string
	classNames map[uint16]uint16 // class constant pool index -> name_index
}

func (p constantPool) utf8(idx uint16) (string, bool) {
	s, ok := p.utf8s[idx]
	return s, ok
}

// className resolves a CONSTANT_Class pool index to its qualified class name.
func (p constantPool) className(idx uint16) (string, bool) {
	nameIdx, ok := p.classNames[idx]
	if !ok {
		return "", false
	}
	raw, ok := p.utf8(nameIdx)
	if !ok {
		return "", false
	}
	return classNameFromConstant(raw)
}

// allClassNames resolves every CONSTANT_Class entry in the pool.
func (p constantPool) allClassNames() []string {
	names := make([]string, 0, len(p.classNames))
	for idx := range p.classNames {
		if name, ok := p.className(idx); ok {
			names = append(names, name)
		}
	}
	return names
}

// readConstantPool reads constant_pool_count and then that many entries,
// recording Utf8 values and Class name indices and otherwise only
// advancing the cursor by each entry's fixed or variable size.
func readConstantPool(c *cursor) (constantPool, error) {
	count, err := c.u2()
	if err != nil {
		return constantPool{}, badClass("reading constant_pool_count", err)
	}

	pool := constantPool{
		utf8s:      make(map[uint16]string),
		classNames: make(map[uint16]uint16),
	}

	// Valid indices are 1..count-1; Long/Double entries occupy two slots.
	for idx := uint16(1); idx < count; idx++ {
		tag, err := c.u1()
		if err != nil {
			return constantPool{}, badClass("reading constant pool tag", err)
		}
		switch tag {
		case tagUtf8:
			length, err := c.u2()
			if err != nil {
				return constantPool{}, badClass("reading utf8 length", err)
			}
			raw, err := c.bytes(int(length))
			if err != nil {
				return constantPool{}, badClass("reading utf8 bytes", err)
			}
			pool.utf8s[idx] = string(raw)
		case tagClass:
			nameIdx, err := c.u2()
			if err != nil {
				return constantPool{}, badClass("reading class name_index", err)
			}
			pool.classNames[idx] = nameIdx
		case tagString, tagMethodType, tagModule, tagPackage:
			if err := c.skip(2); err != nil {
				return constantPool{}, badClass("skipping constant pool entry", err)
			}
		case tagInteger, tagFloat, tagFieldref, tagMethodref,
			tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			if err := c.skip(4); err != nil {
				return constantPool{}, badClass("skipping constant pool entry", err)
			}
		case tagLong, tagDouble:
			if err := c.skip(8); err != nil {
				return constantPool{}, badClass("skipping constant pool entry", err)
			}
			// Long/Double take two constant pool slots; skip the unusable one.
			idx++
		case tagMethodHandle:
			if err := c.skip(3); err != nil {
				return constantPool{}, badClass("skipping constant pool entry", err)
			}
		default:
			return constantPool{}, apperr.Newf(apperr.BadClassFile, "unknown constant pool tag %d", tag)
		}
	}
	return pool, nil
}
