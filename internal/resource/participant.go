package resource

// Participant is a remote end-user connected to the Interactive service
// for this integration. SessionID is its identity; it is unique per
// connection and stable across a participant's reconnects within a
// session.
type Participant struct {
	SessionID   string
	UserID      uint
	Username    string
	Level       uint
	LastInputAt int64
	ConnectedAt int64
	Disabled    bool
	GroupID     string
	Meta        Meta
}

// Equal compares participants by SessionID alone.
func (p Participant) Equal(other Participant) bool {
	return p.SessionID == other.SessionID
}

// ActiveSince reports whether the participant's last input was at or after
// sinceMs. ParticipantService.GetActiveParticipants does not call it: that
// RPC's filtering is done by the server.
func (p Participant) ActiveSince(sinceMs int64) bool {
	return p.LastInputAt >= sinceMs
}

// WithDefaultGroup returns p with GroupID filled to DefaultGroupID when
// empty, the same silent-rewrite behavior flagged for groups in
// resource.go's NormalizeGroupAssignment.
func (p Participant) WithDefaultGroup() Participant {
	p.GroupID = NormalizeGroupAssignment(p.GroupID)
	return p
}
