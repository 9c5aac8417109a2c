// specxml/errors.go
package specxml

import "fmt"

// ErrXMLSyntax is returned for malformed XML (spec.md §4.2): unbalanced
// tags, invalid character data, and the like. ErrStructural is returned
// when the XML is well-formed but the loader itself rejects it (missing
// mandatory element or attribute, invalid attribute value, unknown format
// tag, duplicate enum key). Invariants checked by specmodel (bit range
// inverted, UAP index gap, duplicate item id, unresolved UAP item id)
// surface as specmodel.ErrSpec instead.
var (
	ErrXMLSyntax  = fmt.Errorf("specxml: XML syntax error")
	ErrStructural = fmt.Errorf("specxml: structural spec error")
)

// PositionError carries file/line/element context for a load-time failure,
// per spec.md §4.2: "reports structural errors" / "(with file, line,
// element context)".
type PositionError struct {
	File    string
	Line    int
	Element string
	Err     error
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%s:%d: <%s>: %v", e.File, e.Line, e.Element, e.Err)
}

func (e *PositionError) Unwrap() error { return e.Err }
