package sink

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
)

// HPBarWidth is the number of squares in a health bar.
const HPBarWidth = 10

// HPBar renders current/max as green squares for remaining health and white
// squares for missing health. Filled squares are floor(current*10/max).
//
// Postcondition: the result always contains exactly HPBarWidth squares.
func HPBar(current, max int) string {
	filled := 0
	if max > 0 && current > 0 {
		filled = current * HPBarWidth / max
	}
	if filled > HPBarWidth {
		filled = HPBarWidth
	}
	return strings.Repeat("🟩", filled) + strings.Repeat("⬜", HPBarWidth-filled)
}

// CombatantLine renders one roster line: status, name, bar, HP and ability.
func CombatantLine(c *combat.Combatant) string {
	icon := "⚔️"
	if !c.IsAlive() {
		icon = "💀"
	}
	line := fmt.Sprintf("%s **%s** %s %d/%d", icon, c.Name, HPBar(c.CurrentHP, c.Base.MaxHP), c.CurrentHP, c.Base.MaxHP)
	if c.AbilityKey != "" {
		line += fmt.Sprintf("\n📋 %s - %s", c.Class, c.AbilityKey)
	}
	return line
}

// TeamSummary renders every combatant of one team, one per line.
func TeamSummary(state *combat.BattleState, team combat.Team) string {
	members := state.Team(team)
	lines := make([]string, len(members))
	for i, c := range members {
		lines[i] = CombatantLine(c)
	}
	return strings.Join(lines, "\n")
}

// Outcome renders the winner of an ended battle.
func Outcome(state *combat.BattleState) string {
	switch state.Winner {
	case combat.WinnerTeamA:
		return "🏆 Team A wins!"
	case combat.WinnerTeamB:
		return "🏆 Team B wins!"
	case combat.WinnerDraw:
		return "🤝 The battle ends in a draw."
	default:
		return "Battle in progress"
	}
}

// EventLine renders an event's plain message prefixed with its turn.
func EventLine(ev combat.BattleEvent) string {
	return fmt.Sprintf("Turn %d: %s", ev.Turn, ev.Message)
}
