// Package render formats decoded ASTERIX records for the idefix CLI,
// following the "Record #%d" / field-per-line layout of the teacher's
// asterix.AsterixMessage.String().
package render

import (
	"fmt"
	"strings"

	"github.com/loxasys/asterix/decode"
	"github.com/loxasys/asterix/specmodel"
)

// Record renders one decoded record as a multi-line human-readable block.
func Record(rec *decode.AsterixRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s record #%d (block@%d, %d bytes, crc32=%08x, format_ok=%t, uap=%s)\n",
		rec.Category, rec.RecordIndex, rec.BlockOffset, rec.RawLength, rec.CRC32, rec.FormatOK, rec.UAPName)

	for _, it := range rec.Items {
		if it.Err != nil {
			fmt.Fprintf(&sb, "  %s (FRN %d): decode error: %v\n", it.ItemID, it.FRN, it.Err)
			continue
		}
		fmt.Fprintf(&sb, "  %s (FRN %d): %s\n", it.ItemID, it.FRN, item(it.Value))
	}
	return sb.String()
}

// item renders one DecodedItem's value, recursing into its nested shape.
func item(v specmodel.DecodedItem) string {
	switch v.Kind {
	case specmodel.KindFixed:
		return fields(v.Fields)
	case specmodel.KindVariable:
		parts := make([]string, len(v.Parts))
		for i, p := range v.Parts {
			parts[i] = fields(p.Fields)
		}
		return strings.Join(parts, "; ")
	case specmodel.KindRepetitive:
		parts := make([]string, len(v.Items))
		for i, p := range v.Items {
			parts[i] = item(p)
		}
		return fmt.Sprintf("[%d] %s", v.Count, strings.Join(parts, " | "))
	case specmodel.KindCompound:
		parts := make([]string, 0, len(v.ChildOrder))
		for _, pos := range v.ChildOrder {
			parts = append(parts, fmt.Sprintf("%d=%s", pos, item(v.Children[pos])))
		}
		return strings.Join(parts, ", ")
	case specmodel.KindExplicit:
		if v.Inner == nil {
			return "<empty>"
		}
		return item(*v.Inner)
	case specmodel.KindBDS:
		if len(v.BDSFields) > 0 {
			return fmt.Sprintf("bds%02x %s", v.BDSRegister, fields(v.BDSFields))
		}
		return fmt.Sprintf("bds%02x raw=% x", v.BDSRegister, v.BDSRaw)
	default:
		return "<unknown>"
	}
}

func fields(fs []specmodel.FieldValue) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = fmt.Sprintf("%s=%v", f.ShortName, f.Presented)
	}
	return strings.Join(parts, " ")
}
