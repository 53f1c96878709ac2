// Package provision drives build-and-program sessions: it derives each
// switch's forwarding plan and installs it over the switch control channel,
// fanning out across switches with a worker pool.
package provision

// Data-plane contract: the tables, actions, and registers the packet pipeline
// consumes. The pipeline compares byte_counter[port] against load_threshold[0]
// and forwards via alt_nhop instead of the primary when it is exceeded; that
// decision executes entirely in the data plane.
const (
	TableIPv4LPM     = "ipv4_lpm"
	TableECMPGroup   = "ecmp_group"
	TableECMPNextHop = "ecmp_nhop"
	TableAltNextHop  = "alt_nhop"
	TableSMACRewrite = "smac_rewrite"

	ActionSetNextHop     = "set_nhop"
	ActionSetECMPGroup   = "set_ecmp_group"
	ActionSetECMPInfo    = "set_ecmp_info"
	ActionSetECMPNextHop = "set_ecmp_nhop"
	ActionSetAltNextHop  = "set_alt_nhop"
	ActionSetSMAC        = "set_smac"

	RegisterLoadThreshold = "load_threshold"
	RegisterByteCounter   = "byte_counter"
)

// AllTables lists every table a session clears before programming,
// in clearing order.
var AllTables = []string{
	TableIPv4LPM,
	TableECMPGroup,
	TableECMPNextHop,
	TableAltNextHop,
	TableSMACRewrite,
}
