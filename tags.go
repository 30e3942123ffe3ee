// PortLabels is a helper mapping switch port numbers to human readable
// names. StatusServer holds a PortLabels field, but the debug API's
// snapshot output does not include these names; ports appear by number.
//
// Example:
// PortLabels[7] = "uplink"
package igmpsnoop

type PortLabels map[int]string
