package room

import "fmt"

func sprintWinner(playerNum int, t float64) string {
	return fmt.Sprintf("Player %d wins! (%.2fs)", playerNum, t)
}

func sprintWinnerVs(playerNum int, winT, loseT float64) string {
	return fmt.Sprintf("Player %d wins! (%.2fs vs %.2fs)", playerNum, winT, loseT)
}

func sprintDraw(t float64) string {
	return fmt.Sprintf("Draw! (%.2fs)", t)
}
