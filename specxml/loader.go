// Package specxml implements the streaming XML loader of spec.md §4.2: it
// materializes the specmodel.Definition from a catalog of category XML
// files, maintaining a small explicit stack of in-construction nodes
// (xmltree.go) and never holding more than one category document in memory
// at a time.
package specxml

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/loxasys/asterix/specmodel"
)

// Load reads and parses every category XML file in paths, in order, and
// returns a frozen Definition. Either the whole catalog loads or nothing
// does (spec.md §3 "Lifecycle"): the first structural or syntax error
// aborts the call.
func Load(paths []string, logger *slog.Logger) (*specmodel.Definition, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := specmodel.NewDefinition()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("specxml: opening %s: %w", p, err)
		}
		cat, err := LoadCategory(p, f, logger)
		closeErr := f.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, fmt.Errorf("specxml: closing %s: %w", p, closeErr)
		}
		if err := def.AddCategory(cat); err != nil {
			return nil, err
		}
	}
	def.Freeze()
	return def, nil
}

// LoadCategory parses a single category XML document from r.
func LoadCategory(file string, r io.Reader, logger *slog.Logger) (*specmodel.Category, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := parseXMLTree(file, r)
	if err != nil {
		return nil, err
	}
	if root.Name != "Category" {
		return nil, &PositionError{File: file, Line: root.Line, Element: root.Name, Err: fmt.Errorf("%w: expected root element <Category>", ErrStructural)}
	}

	idStr, ok := root.attr("id")
	if !ok {
		return nil, structErr(file, root, "Category", "missing required attribute 'id'")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 || id > 255 {
		return nil, structErr(file, root, "Category", fmt.Sprintf("invalid category id %q", idStr))
	}
	ver, _ := root.attr("ver")

	cat := specmodel.NewCategory(specmodel.CategoryID(id), ver)

	for _, diElem := range root.childrenNamed("DataItem") {
		item, err := buildDataItem(file, diElem, logger)
		if err != nil {
			return nil, err
		}
		if err := cat.AddItem(item); err != nil {
			return nil, err
		}
	}

	uapElems := root.childrenNamed("UAP")
	if len(uapElems) == 0 {
		return nil, structErr(file, root, "Category", "no UAP declared")
	}
	for _, uapElem := range uapElems {
		name, _ := uapElem.attr("name")
		if name == "" {
			name = "default"
		}
		isDefault := uapElem.Attrs["default"] == "true" || len(uapElems) == 1

		entries, err := buildUAPEntries(file, uapElem)
		if err != nil {
			return nil, err
		}
		uap, err := specmodel.NewUAP(entries)
		if err != nil {
			return nil, &PositionError{File: file, Line: uapElem.Line, Element: "UAP", Err: err}
		}
		if err := cat.AddUAP(name, uap, isDefault); err != nil {
			return nil, err
		}
	}

	if err := cat.Validate(); err != nil {
		return nil, &PositionError{File: file, Line: root.Line, Element: "Category", Err: err}
	}
	return cat, nil
}

func structErr(file string, e *elem, name, reason string) error {
	return &PositionError{File: file, Line: e.Line, Element: name, Err: fmt.Errorf("%w: %s", ErrStructural, reason)}
}

func buildDataItem(file string, e *elem, logger *slog.Logger) (*specmodel.DataItemDescription, error) {
	id, ok := e.attr("id")
	if !ok {
		return nil, structErr(file, e, "DataItem", "missing required attribute 'id'")
	}
	rule := specmodel.Optional
	switch strings.ToLower(e.Attrs["rule"]) {
	case "mandatory":
		rule = specmodel.Mandatory
	case "conditional":
		rule = specmodel.Conditional
	}

	name := ""
	if nameElem, ok := e.child("DataItemName"); ok {
		name = nameElem.text()
	}
	def := ""
	if defElem, ok := e.child("DataItemDefinition"); ok {
		def = defElem.text()
	}

	formatElem, ok := e.child("DataItemFormat")
	if !ok {
		return nil, structErr(file, e, "DataItem", fmt.Sprintf("item %s missing DataItemFormat", id))
	}
	if len(formatElem.Children) != 1 {
		return nil, structErr(file, formatElem, "DataItemFormat", "must contain exactly one format node")
	}
	node, err := buildFormatNode(file, formatElem.Children[0], logger)
	if err != nil {
		return nil, err
	}

	return &specmodel.DataItemDescription{ID: id, Name: name, Definition: def, Format: node, Rule: rule}, nil
}

func buildFormatNode(file string, e *elem, logger *slog.Logger) (specmodel.FormatNode, error) {
	switch e.Name {
	case "Fixed":
		return buildFixed(file, e)
	case "Variable":
		return buildVariable(file, e)
	case "Repetitive":
		return buildRepetitive(file, e, logger)
	case "Compound":
		return buildCompound(file, e, logger)
	case "Explicit":
		return buildExplicit(file, e, logger)
	case "BDS":
		return buildBDS(file, e)
	default:
		return nil, structErr(file, e, e.Name, fmt.Sprintf("%v: %q", specmodel.ErrUnknownFormat, e.Name))
	}
}

func buildFixed(file string, e *elem) (*specmodel.FixedNode, error) {
	lenStr, ok := e.attr("length")
	if !ok {
		return nil, structErr(file, e, "Fixed", "missing required attribute 'length'")
	}
	lenBytes, err := strconv.Atoi(lenStr)
	if err != nil {
		return nil, structErr(file, e, "Fixed", fmt.Sprintf("invalid length %q", lenStr))
	}

	var bits []specmodel.DataItemBits
	seenEnumKeys := make(map[string]map[uint64]bool)
	for _, be := range e.childrenNamed("Bits") {
		b, err := buildBits(file, be, lenBytes, seenEnumKeys)
		if err != nil {
			return nil, err
		}
		bits = append(bits, b)
	}
	node, err := specmodel.NewFixedNode(lenBytes, bits)
	if err != nil {
		return nil, &PositionError{File: file, Line: e.Line, Element: "Fixed", Err: err}
	}
	return node, nil
}

func buildBits(file string, e *elem, lenBytes int, seenEnumKeys map[string]map[uint64]bool) (specmodel.DataItemBits, error) {
	b := specmodel.DataItemBits{}

	if bitStr, ok := e.attr("bit"); ok {
		n, err := strconv.Atoi(bitStr)
		if err != nil {
			return b, structErr(file, e, "Bits", fmt.Sprintf("invalid 'bit' attribute %q", bitStr))
		}
		b.FromBit, b.ToBit = n, n
	} else {
		fromStr, okF := e.attr("from")
		toStr, okT := e.attr("to")
		if !okF || !okT {
			return b, structErr(file, e, "Bits", "must declare 'bit' or both 'from' and 'to'")
		}
		from, err1 := strconv.Atoi(fromStr)
		to, err2 := strconv.Atoi(toStr)
		if err1 != nil || err2 != nil {
			return b, structErr(file, e, "Bits", "invalid 'from'/'to' attribute")
		}
		b.FromBit, b.ToBit = from, to
	}

	b.IsFX = e.Attrs["fx"] == "true"

	switch strings.ToLower(e.Attrs["encode"]) {
	case "signed":
		b.Encoding = specmodel.SignedTwosComplement
	case "icao6":
		b.Encoding = specmodel.ICAO6bitChar
		b.Presentation = specmodel.PresentString
	case "ascii":
		b.Encoding = specmodel.AsciiChar
		b.Presentation = specmodel.PresentString
	case "hex":
		b.Encoding = specmodel.Hex
	case "octal":
		b.Encoding = specmodel.Octal
	case "enum":
		b.Encoding = specmodel.EnumLookup
		b.Presentation = specmodel.PresentEnum
	default:
		b.Encoding = specmodel.Unsigned
	}

	if shortElem, ok := e.child("BitsShortName"); ok {
		b.ShortName = shortElem.text()
	} else {
		b.ShortName = fmt.Sprintf("bit%d-%d", b.FromBit, b.ToBit)
	}
	if nameElem, ok := e.child("BitsName"); ok {
		b.Name = nameElem.text()
	}
	if unitElem, ok := e.child("BitsUnit"); ok {
		b.Unit = unitElem.text()
	}

	if scaleStr, ok := e.attr("scale"); ok {
		scale, err := strconv.ParseFloat(scaleStr, 64)
		if err != nil {
			return b, structErr(file, e, "Bits", fmt.Sprintf("invalid 'scale' %q", scaleStr))
		}
		b.Scale = scale
		if b.Presentation == specmodel.PresentInt {
			b.Presentation = specmodel.PresentReal
		}
	} else if b.Presentation == specmodel.PresentInt {
		b.Scale = 1
	}
	if offsetStr, ok := e.attr("offset"); ok {
		offset, err := strconv.ParseFloat(offsetStr, 64)
		if err != nil {
			return b, structErr(file, e, "Bits", fmt.Sprintf("invalid 'offset' %q", offsetStr))
		}
		b.Offset = offset
	}

	if minElem, ok := e.child("BitsMin"); ok {
		v, err := strconv.ParseFloat(minElem.text(), 64)
		if err == nil {
			b.Min = &v
		}
	}
	if maxElem, ok := e.child("BitsMax"); ok {
		v, err := strconv.ParseFloat(maxElem.text(), 64)
		if err == nil {
			b.Max = &v
		}
	}

	if valueElems := e.childrenNamed("BitsValue"); len(valueElems) > 0 {
		b.EnumMap = make(map[uint64]string)
		seen := seenEnumKeys[b.ShortName]
		if seen == nil {
			seen = make(map[uint64]bool)
			seenEnumKeys[b.ShortName] = seen
		}
		for _, ve := range valueElems {
			valStr, ok := ve.attr("val")
			if !ok {
				return b, structErr(file, ve, "BitsValue", "missing required attribute 'val'")
			}
			val, err := strconv.ParseUint(valStr, 0, 64)
			if err != nil {
				return b, structErr(file, ve, "BitsValue", fmt.Sprintf("invalid 'val' %q", valStr))
			}
			if seen[val] {
				return b, structErr(file, ve, "BitsValue", fmt.Sprintf("%v: duplicate enum key %d for %s", specmodel.ErrSpec, val, b.ShortName))
			}
			seen[val] = true
			b.EnumMap[val] = ve.Attrs["desc"]
		}
	}

	if err := b.Validate(lenBytes); err != nil {
		return b, &PositionError{File: file, Line: e.Line, Element: "Bits", Err: err}
	}
	return b, nil
}

func buildVariable(file string, e *elem) (*specmodel.VariableNode, error) {
	var parts []*specmodel.FixedNode
	for _, fe := range e.childrenNamed("Fixed") {
		f, err := buildFixed(file, fe)
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
	}
	node, err := specmodel.NewVariableNode(parts)
	if err != nil {
		return nil, &PositionError{File: file, Line: e.Line, Element: "Variable", Err: err}
	}
	return node, nil
}

func buildRepetitive(file string, e *elem, logger *slog.Logger) (*specmodel.RepetitiveNode, error) {
	width := specmodel.RepCountByte1
	if countStr, ok := e.attr("count"); ok {
		switch countStr {
		case "1":
			width = specmodel.RepCountByte1
		case "2":
			width = specmodel.RepCountByte2
		default:
			return nil, structErr(file, e, "Repetitive", fmt.Sprintf("invalid 'count' %q, want 1 or 2", countStr))
		}
	} else {
		logger.Warn("Repetitive element missing 'count' attribute, defaulting to 1-byte count", "file", file, "line", e.Line)
	}
	if len(e.Children) == 0 {
		return nil, structErr(file, e, "Repetitive", "missing inner format node")
	}
	inner, err := buildFormatNode(file, e.Children[0], logger)
	if err != nil {
		return nil, err
	}
	node, err := specmodel.NewRepetitiveNode(width, inner)
	if err != nil {
		return nil, &PositionError{File: file, Line: e.Line, Element: "Repetitive", Err: err}
	}
	return node, nil
}

func buildCompound(file string, e *elem, logger *slog.Logger) (*specmodel.CompoundNode, error) {
	if len(e.Children) == 0 || e.Children[0].Name != "Variable" {
		return nil, structErr(file, e, "Compound", "first child must be the primary <Variable>")
	}
	primary, err := buildVariable(file, e.Children[0])
	if err != nil {
		return nil, err
	}
	var children []specmodel.FormatNode
	for _, ce := range e.Children[1:] {
		child, err := buildFormatNode(file, ce, logger)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	node, err := specmodel.NewCompoundNode(primary, children)
	if err != nil {
		return nil, &PositionError{File: file, Line: e.Line, Element: "Compound", Err: err}
	}
	return node, nil
}

func buildExplicit(file string, e *elem, logger *slog.Logger) (*specmodel.ExplicitNode, error) {
	if len(e.Children) == 0 {
		return nil, structErr(file, e, "Explicit", "missing inner format node")
	}
	inner, err := buildFormatNode(file, e.Children[0], logger)
	if err != nil {
		return nil, err
	}
	node, err := specmodel.NewExplicitNode(inner)
	if err != nil {
		return nil, &PositionError{File: file, Line: e.Line, Element: "Explicit", Err: err}
	}
	return node, nil
}

func buildBDS(file string, e *elem) (*specmodel.BDSNode, error) {
	registerFromByte7 := e.Attrs["source"] != "external"
	regMap := make(map[byte]*specmodel.FixedNode)
	for _, re := range e.childrenNamed("Register") {
		valStr, ok := re.attr("val")
		if !ok {
			return nil, structErr(file, re, "Register", "missing required attribute 'val'")
		}
		val, err := strconv.ParseUint(valStr, 0, 8)
		if err != nil {
			return nil, structErr(file, re, "Register", fmt.Sprintf("invalid 'val' %q", valStr))
		}
		if len(re.Children) == 0 || re.Children[0].Name != "Fixed" {
			return nil, structErr(file, re, "Register", "Register must wrap a <Fixed> sub-spec")
		}
		fx, err := buildFixed(file, re.Children[0])
		if err != nil {
			return nil, err
		}
		regMap[byte(val)] = fx
	}
	node, err := specmodel.NewBDSNode(regMap, registerFromByte7)
	if err != nil {
		return nil, &PositionError{File: file, Line: e.Line, Element: "BDS", Err: err}
	}
	return node, nil
}

func buildUAPEntries(file string, e *elem) ([]specmodel.UAPEntry, error) {
	var entries []specmodel.UAPEntry
	for _, ie := range e.childrenNamed("UAPItem") {
		frnStr, ok := ie.attr("frn")
		if !ok {
			return nil, structErr(file, ie, "UAPItem", "missing required attribute 'frn'")
		}
		frn, err := strconv.Atoi(frnStr)
		if err != nil || frn < 1 {
			return nil, structErr(file, ie, "UAPItem", fmt.Sprintf("invalid 'frn' %q", frnStr))
		}
		itemID := ie.Attrs["item"]
		if ie.Attrs["presence"] == "spare" {
			itemID = ""
		}
		entries = append(entries, specmodel.UAPEntry{FRN: uint8(frn), ItemID: itemID})
	}
	return entries, nil
}
