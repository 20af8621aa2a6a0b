package enums

type GametimeStatus string

const (
	GametimeStatusUpcoming   GametimeStatus = "upcoming"
	GametimeStatusInProgress GametimeStatus = "in_progress"
	GametimeStatusCompleted  GametimeStatus = "completed"
	GametimeStatusCancelled  GametimeStatus = "cancelled"
)

type ParticipationStatus string

const (
	ParticipationStatusJoined  ParticipationStatus = "joined"
	ParticipationStatusLeft    ParticipationStatus = "left"
	ParticipationStatusRemoved ParticipationStatus = "removed"
)
