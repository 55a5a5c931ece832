package combat

import "fmt"

// Narration for fight events, as players read them.

func BeginMessage(enemy Combatant, description string) string {
	return fmt.Sprintf("A fight with %s!\n%s", enemy.Name, description)
}

func Describe(s State, player, enemy Combatant) string {
	return fmt.Sprintf("A fight against %s!\nYou: %d/%d HP\n%s %d/%d HP",
		enemy.Name, s.PlayerHealth, player.MaxHealth(), enemy.Name, s.EnemyHealth, enemy.MaxHealth())
}

func playerAttackMessage(a Attack) string {
	if !a.Hit {
		return "You attack, but miss!"
	}
	return fmt.Sprintf("You attack for %d!", a.Damage)
}

func enemyAttackMessage(enemy Combatant, a Attack) string {
	if !a.Hit {
		return fmt.Sprintf("%s attacks, but misses!", enemy.Name)
	}
	return fmt.Sprintf("%s attacks for %d!", enemy.Name, a.Damage)
}

func defeatedMessage(enemy Combatant) string {
	return fmt.Sprintf("%s lies defeated!", enemy.Name)
}

const (
	fledMessage     = "You flee to safety!"
	fleeFailMessage = "Can't run away!"
	diedMessage     = "💀 You died"
)
