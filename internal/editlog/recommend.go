package editlog

import (
	"context"
	"fmt"
)

const (
	shorterRatio = 0.9
	longerRatio  = 1.1
	topEditTypes = 3
)

// EditCount is how often one edit type was seen.
type EditCount struct {
	Type  EditType `json:"type"`
	Count int      `json:"count"`
}

func (c EditCount) String() string {
	return fmt.Sprintf("%s (seen %d times)", c.Type, c.Count)
}

// Recommendations summarize past edits.
type Recommendations struct {
	Sessions        int         `json:"sessions"`
	MeanRatio       float64     `json:"mean_ratio"`
	SuggestedLength int         `json:"suggested_length"`
	CommonEdits     []EditCount `json:"common_edits"`
	Notes           []string    `json:"notes"`
}

// Recommend derives recommendations for a request of currentLength words.
// With no history the suggested length is currentLength unchanged.
func (s *Store) Recommend(ctx context.Context, currentLength int) (Recommendations, error) {
	rec := Recommendations{SuggestedLength: currentLength, MeanRatio: 1}

	rows, err := s.db.QueryContext(ctx, `SELECT length_ratio FROM edit_sessions ORDER BY created_at DESC, rowid DESC LIMIT ?`, s.window)
	if err != nil {
		return rec, fmt.Errorf("load length ratios: %w", err)
	}
	var sum float64
	for rows.Next() {
		var ratio float64
		if err := rows.Scan(&ratio); err != nil {
			rows.Close()
			return rec, fmt.Errorf("scan length ratio: %w", err)
		}
		sum += ratio
		rec.Sessions++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rec, fmt.Errorf("iterate length ratios: %w", err)
	}

	if rec.Sessions > 0 {
		rec.MeanRatio = sum / float64(rec.Sessions)
		rec.SuggestedLength = int(float64(currentLength) * rec.MeanRatio)
		switch {
		case rec.MeanRatio < shorterRatio:
			rec.Notes = append(rec.Notes, "prefers shorter, more concise scripts")
		case rec.MeanRatio > longerRatio:
			rec.Notes = append(rec.Notes, "prefers longer, more detailed scripts")
		}
	}

	counts, err := s.editCounts(ctx)
	if err != nil {
		return rec, err
	}
	rec.CommonEdits = counts
	for _, c := range counts {
		if c.Count < 2 {
			continue
		}
		switch c.Type {
		case EditAddedPauses:
			rec.Notes = append(rec.Notes, "often adds pauses; break long sentences with commas")
		case EditAddedQualifiers:
			rec.Notes = append(rec.Notes, `often adds casual qualifiers such as "actually" and "really"`)
		}
	}
	return rec, nil
}

// StyleNotes returns the topic-free notes of the current recommendations.
func (s *Store) StyleNotes(ctx context.Context) ([]string, error) {
	rec, err := s.Recommend(ctx, 0)
	if err != nil {
		return nil, err
	}
	return rec.Notes, nil
}

func (s *Store) editCounts(ctx context.Context) ([]EditCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT edit_type, COUNT(1) AS n FROM edit_session_types
         GROUP BY edit_type ORDER BY n DESC, edit_type ASC LIMIT ?`, topEditTypes)
	if err != nil {
		return nil, fmt.Errorf("count edit types: %w", err)
	}
	defer rows.Close()

	var out []EditCount
	for rows.Next() {
		var c EditCount
		var editType string
		if err := rows.Scan(&editType, &c.Count); err != nil {
			return nil, fmt.Errorf("scan edit type count: %w", err)
		}
		c.Type = EditType(editType)
		out = append(out, c)
	}
	return out, rows.Err()
}
