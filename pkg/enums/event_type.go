package enums

// EventType names the domain events published to the shared topic. Delivery
// is best-effort; consumers must tolerate duplicates.
type EventType string

const (
	EventClubCIDRenamed    EventType = "club.cid.renamed"
	EventMemberRolePending EventType = "member.role.pending"
	EventClubDeleted       EventType = "club.deleted"
)

// String implements fmt.Stringer.
func (e EventType) String() string {
	return string(e)
}
