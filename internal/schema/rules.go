package schema

import "strings"

// Role names one field of the normalized flow schema.
type Role string

const (
	RoleSrcIP    Role = "src_ip"
	RoleDstIP    Role = "dst_ip"
	RoleSrcPort  Role = "src_port"
	RoleDstPort  Role = "dst_port"
	RoleProtocol Role = "protocol"
	RoleBytes    Role = "bytes"
	RolePackets  Role = "packets"
)

// Rule matches a source column to a role when every keyword occurs in the
// lowercased column name.
type Rule struct {
	Role     Role
	Keywords []string
}

// DefaultRules covers the column vocabularies of the common flow-export
// formats (CIC-style captures among them). Order matters twice over: rules
// are evaluated top to bottom, and within a rule the first unclaimed matching
// column wins.
var DefaultRules = []Rule{
	{Role: RoleSrcIP, Keywords: []string{"source", "ip"}},
	{Role: RoleDstIP, Keywords: []string{"destination", "ip"}},
	{Role: RoleSrcPort, Keywords: []string{"source", "port"}},
	{Role: RoleDstPort, Keywords: []string{"destination", "port"}},
	{Role: RoleProtocol, Keywords: []string{"protocol"}},
	{Role: RoleBytes, Keywords: []string{"length", "fwd"}},
	{Role: RolePackets, Keywords: []string{"total", "fwd", "packet"}},
}

// Matches reports whether the column name satisfies the rule.
func (r Rule) Matches(column string) bool {
	name := strings.ToLower(strings.TrimSpace(column))
	for _, kw := range r.Keywords {
		if !strings.Contains(name, kw) {
			return false
		}
	}
	return true
}

// Resolution records which column, if any, was chosen for each role. An
// unresolved role is an explicit outcome, not an error: the normalizer
// synthesizes values for it.
type Resolution struct {
	columns map[Role]int
}

// Column returns the column index resolved for role.
func (r Resolution) Column(role Role) (int, bool) {
	idx, ok := r.columns[role]
	return idx, ok
}

// Resolved lists the roles that found a column.
func (r Resolution) Resolved() []Role {
	roles := make([]Role, 0, len(r.columns))
	for _, rule := range DefaultRules {
		if _, ok := r.columns[rule.Role]; ok {
			roles = append(roles, rule.Role)
		}
	}
	return roles
}

// Resolve assigns columns to roles by evaluating the rules in order. Each
// column is claimed at most once, so a header like "Source IP" cannot serve
// two roles even when several rules would accept it.
func Resolve(columns []string, rules []Rule) Resolution {
	res := Resolution{columns: make(map[Role]int, len(rules))}
	claimed := make([]bool, len(columns))

	for _, rule := range rules {
		for i, col := range columns {
			if claimed[i] || !rule.Matches(col) {
				continue
			}
			res.columns[rule.Role] = i
			claimed[i] = true
			break
		}
	}
	return res
}
