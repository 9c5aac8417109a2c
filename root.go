// Package asterix is the top-level module for loading ASTERIX (All Purpose
// STructured EUROCONTROL SurveIllance Information EXchange) category
// specifications and decoding binary surveillance data against them.
//
// The catalog loader lives in package specxml, the spec data model in
// package specmodel, the record decoder in package decode, and the capture
// framing sublayers in package framing. This package holds only module-wide
// version metadata; import the subpackages directly.
package asterix

// Version identifies this module's release.
const (
	Version = "0.1.0"
)
