package service

import (
	"time"

	"koppo/internal/models"
)

// TradeStreak is a maximal contiguous run of same-outcome trades. It is
// derived fresh on each analysis call and never persisted.
type TradeStreak struct {
	Type           string              `json:"type"`
	Length         int                 `json:"length"`
	StartTimestamp time.Time           `json:"start_timestamp"`
	EndTimestamp   time.Time           `json:"end_timestamp"`
	Trades         []models.TradeAudit `json:"trades"`
}

type StreakReport struct {
	LongestWin  *TradeStreak `json:"longest_win"`
	LongestLoss *TradeStreak `json:"longest_loss"`
}

// AnalyzeStreaks finds the longest winning and losing streaks in a single
// forward pass over chronologically ordered records. At most one winning
// and one losing streak is in progress at a time and they are mutually
// exclusive: a WIN discards the in-progress losing streak and vice versa.
// A PENDING record terminates both without starting a new one. Longest is
// updated with strict >, so ties keep the earliest streak found.
func AnalyzeStreaks(records []models.TradeAudit) StreakReport {
	var currentWin, currentLoss *TradeStreak
	var longestWin, longestLoss *TradeStreak

	for i := range records {
		record := records[i]
		switch record.Outcome {
		case models.OutcomeWin:
			currentWin = extendStreak(currentWin, models.OutcomeWin, record)
			currentLoss = nil
		case models.OutcomeLoss:
			currentLoss = extendStreak(currentLoss, models.OutcomeLoss, record)
			currentWin = nil
		default:
			// PENDING (or anything else) ends both runs.
			currentWin = nil
			currentLoss = nil
		}

		if currentWin != nil && (longestWin == nil || currentWin.Length > longestWin.Length) {
			longestWin = snapshotStreak(currentWin)
		}
		if currentLoss != nil && (longestLoss == nil || currentLoss.Length > longestLoss.Length) {
			longestLoss = snapshotStreak(currentLoss)
		}
	}

	return StreakReport{LongestWin: longestWin, LongestLoss: longestLoss}
}

func extendStreak(current *TradeStreak, streakType string, record models.TradeAudit) *TradeStreak {
	if current == nil {
		return &TradeStreak{
			Type:           streakType,
			Length:         1,
			StartTimestamp: record.Timestamp,
			EndTimestamp:   record.Timestamp,
			Trades:         []models.TradeAudit{record},
		}
	}
	current.Length++
	current.EndTimestamp = record.Timestamp
	current.Trades = append(current.Trades, record)
	return current
}

func snapshotStreak(current *TradeStreak) *TradeStreak {
	copied := *current
	copied.Trades = append([]models.TradeAudit(nil), current.Trades...)
	return &copied
}
