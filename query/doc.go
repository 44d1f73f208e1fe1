// Package query filters attack chains with CEL expressions.
//
// An expression sees one chain through four variables:
//
//	hops      list of maps with keys "from", "to", "exploit", "service"
//	length    number of hops
//	exploits  exploit names in hop order
//	systems   systems entered laterally, in order
//
// Examples:
//
//	length <= 3
//	"PassTheHash" in exploits
//	!hops.exists(h, h.service == "RDP")
//	systems.size() > 0 && systems[0] == "FILE-SRV"
//
// The expression must evaluate to a bool.
package query
