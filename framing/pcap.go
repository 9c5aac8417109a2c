package framing

import (
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ErrPCAPFraming reports a PCAP/Ethernet/IPv4/UDP framing violation.
var ErrPCAPFraming = fmt.Errorf("%w: PCAP framing", ErrFraming)

// PCAPSource frames a libpcap capture (spec.md §4.4.2): it iterates packet
// records, keeps only IPv4/UDP packets, and offers each UDP payload to an
// embedded RawSource, queuing any raw blocks it yields so Next() always
// returns exactly one ASTERIX block at a time.
//
// gopacket/pcapgo owns the pcap global- and per-packet-header parsing
// (magic, version, link type) instead of the hand-decoded offsets spec.md
// §4.4.2 describes; gopacket's own layer decoders enforce the IHL/length
// bounds it calls out.
type PCAPSource struct {
	reader *pcapgo.Reader
	queue  []Frame
}

// NewPCAPSource wraps a libpcap dump. Returns an error if the global header
// doesn't match the expected magic/version.
func NewPCAPSource(r io.Reader) (*PCAPSource, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPCAPFraming, err)
	}
	return &PCAPSource{reader: pr}, nil
}

func (s *PCAPSource) Name() string { return "pcap" }
func (s *PCAPSource) Close() error { return nil }

func (s *PCAPSource) Next() (Frame, error) {
	for len(s.queue) == 0 {
		if err := s.fillQueue(); err != nil {
			return Frame{}, err
		}
	}
	frame := s.queue[0]
	s.queue = s.queue[1:]
	return frame, nil
}

// fillQueue decodes the next pcap packet record into zero or more queued
// ASTERIX blocks (a single UDP datagram may carry several concatenated raw
// blocks).
func (s *PCAPSource) fillQueue() error {
	data, ci, err := s.reader.ReadPacketData()
	if err != nil {
		return err // io.EOF propagates as-is
	}

	linkType := s.reader.LinkType()
	packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if ipLayer == nil || udpLayer == nil {
		return nil // not an IPv4/UDP packet; nothing queued, caller loops to the next record
	}
	ip4, _ := ipLayer.(*layers.IPv4)
	if ip4.IHL < 5 {
		return fmt.Errorf("%w: IPv4 IHL %d < 5", ErrPCAPFraming, ip4.IHL)
	}
	udp, _ := udpLayer.(*layers.UDP)
	if udp.Length < 8 {
		return fmt.Errorf("%w: UDP length %d < 8", ErrPCAPFraming, udp.Length)
	}

	ts := ci.Timestamp.UnixMicro()
	raw := NewRawSource(udp.Payload)
	for {
		frame, err := raw.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPCAPFraming, err)
		}
		frame.TimestampUs = ts
		s.queue = append(s.queue, frame)
	}
	return nil
}
