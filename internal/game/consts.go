package game

import "time"

const (
	DefaultPollInterval      = 5 * time.Second // cadence of both host polls
	DefaultHostileMultiplier = 1
	HostileAttitude          = -0.9 // standing of every wave hostile toward every member
	MaxCostumeAccessories    = 8

	InfocardWaveStart = 22612 // "Defend yourself!"
	InfocardVictory   = 21650
	InfocardFailure   = 13085

	DefaultFleeingMessage = "{name} has fled from the Wave Defence game."
	fleeingPlaceholder    = "{name}"
)

// Player facing texts.
const (
	msgZoneOccupied  = "There is already a Wave Defence game occurring in this System. Go to another System or wait until the game is over."
	msgNoGame        = "There isn't an available game in this System."
	msgBystanders    = "There are players in the System who are not part of your group."
	msgNoLocation    = "Unable to decipher player location."
	msgStartShortly  = "The game will start shortly."
	msgPluginError   = "There has been an error with the Wave Defence plugin. Please contact an administrator."
	msgWrongZone     = "%s needs to be in the System to start a Wave Defence game."
	msgNotInSpace    = "%s needs to be in space to start a Wave Defence game."
	msgAlreadyInGame = "%s is already in a Wave Defence game."
	msgWaveComplete  = "Wave %d complete. Reward: %d credits."
	msgTeamComplete  = "%s and their team have completed a Wave Defence game."
)

// MissionMessageKind selects how the presentation backend renders a mission message.
type MissionMessageKind int

const (
	MissionText    MissionMessageKind = iota // plain objective text
	MissionVictory                           // success banner
	MissionFailure                           // failure banner
)

func (k MissionMessageKind) String() string {
	switch k {
	case MissionText:
		return "text"
	case MissionVictory:
		return "victory"
	case MissionFailure:
		return "failure"
	default:
		return "unknown"
	}
}
