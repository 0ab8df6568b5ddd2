// Package ipfix implements the IPFIX (NetFlow v10, RFC 7011) template
// registry, record encoder, and datagram builder used to export expired
// flow records. Field layout and construction order are grounded on the
// historical VPP plugin this module's behavior is modeled after
// (ipfix_make_v10_template / ipfix_write_v10_data_packet /
// ipfix_send_packet in original_source/ipfix/node.c).
package ipfix

// Field identifiers from the IANA IPFIX Information Element registry.
const (
	FieldSourceIPv4Address        uint16 = 8
	FieldDestinationIPv4Address   uint16 = 12
	FieldProtocolIdentifier       uint16 = 4
	FieldSourceTransportPort      uint16 = 7
	FieldDestinationTransportPort uint16 = 11
	FieldFlowStartMilliseconds    uint16 = 152
	FieldFlowEndMilliseconds      uint16 = 153
	FieldOctetDeltaCount          uint16 = 1
	FieldPacketDeltaCount         uint16 = 2
)

// TemplateID is the single template ID used by this exporter.
const TemplateID uint16 = 1

// SetID is the IPFIX set ID applied to data sets built against Template.
const SetID uint16 = 1

// Field describes one element of the exported data record.
type Field struct {
	ID   uint16
	Size uint16
}

// RecordWidth is the total fixed width, in octets, of one encoded data
// record: the sum of every field's Size below.
const RecordWidth = 45

// Template is the immutable, fixed description of the fields that populate
// every exported data record, in declared order. It never changes after
// construction: there is exactly one template for this exporter, and it is
// not retransmitted to the collector (template-set transmission is out of
// scope; see DESIGN.md open question #1).
var Template = [9]Field{
	{ID: FieldSourceIPv4Address, Size: 4},
	{ID: FieldDestinationIPv4Address, Size: 4},
	{ID: FieldProtocolIdentifier, Size: 1},
	{ID: FieldSourceTransportPort, Size: 2},
	{ID: FieldDestinationTransportPort, Size: 2},
	{ID: FieldFlowStartMilliseconds, Size: 8},
	{ID: FieldFlowEndMilliseconds, Size: 8},
	{ID: FieldOctetDeltaCount, Size: 8},
	{ID: FieldPacketDeltaCount, Size: 8},
}

func init() {
	var total uint16
	for _, f := range Template {
		total += f.Size
	}
	if total != RecordWidth {
		panic("ipfix: template field widths do not sum to RecordWidth")
	}
}
