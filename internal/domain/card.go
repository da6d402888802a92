package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Card is the per-item memory record the scheduler reads and rewrites.
// review_card always returns a new Card; nothing in this package mutates
// a Card in place.
type Card struct {
	CardID     int64
	State      State
	Step       *int
	Stability  *float64
	Difficulty *float64
	Due        time.Time
	LastReview *time.Time
}

// NewCardID derives a card id from the current UTC epoch in milliseconds,
// then sleeps 1ms so a tight creation loop never hands out the same id
// twice. Callers minting many cards at once should supply explicit ids
// instead of paying this cost per card.
func NewCardID() int64 {
	id := time.Now().UTC().UnixMilli()
	time.Sleep(time.Millisecond)
	return id
}

// NewCard builds a fresh Learning-state card due now. If id is 0, a
// fresh id is derived via NewCardID.
func NewCard(id int64) Card {
	if id == 0 {
		id = NewCardID()
	}
	step := 0
	return Card{
		CardID: id,
		State:  Learning,
		Step:   &step,
		Due:    time.Now().UTC(),
	}
}

// Validate checks the invariants from the data model: state/step
// correspondence, the difficulty range, and the stability floor.
func (c Card) Validate() error {
	if !c.State.IsValid() {
		return fmt.Errorf("card %d: invalid state %d", c.CardID, int(c.State))
	}
	if (c.State == Review) != (c.Step == nil) {
		return fmt.Errorf("card %d: state=%s requires step==nil to be %v, got step=%v", c.CardID, c.State, c.State == Review, c.Step)
	}
	if (c.Stability == nil) != (c.Difficulty == nil) {
		return fmt.Errorf("card %d: stability and difficulty must be set together", c.CardID)
	}
	if c.Difficulty != nil && (*c.Difficulty < 1.0 || *c.Difficulty > 10.0) {
		return fmt.Errorf("card %d: difficulty %v out of [1.0, 10.0]", c.CardID, *c.Difficulty)
	}
	if c.Stability != nil && *c.Stability < 0.001 {
		return fmt.Errorf("card %d: stability %v below floor 0.001", c.CardID, *c.Stability)
	}
	return nil
}

// cardJSON is the external wire shape: field names and casing are part of
// the public contract and must not change.
type cardJSON struct {
	CardID     int64    `json:"card_id"`
	State      int      `json:"state"`
	Step       *int     `json:"step"`
	Stability  *float64 `json:"stability"`
	Difficulty *float64 `json:"difficulty"`
	Due        string   `json:"due"`
	LastReview *string  `json:"last_review"`
}

// MarshalJSON writes the Card in the stable wire shape.
func (c Card) MarshalJSON() ([]byte, error) {
	w := cardJSON{
		CardID:     c.CardID,
		State:      int(c.State),
		Step:       c.Step,
		Stability:  c.Stability,
		Difficulty: c.Difficulty,
		Due:        c.Due.Format(time.RFC3339Nano),
	}
	if c.LastReview != nil {
		s := c.LastReview.Format(time.RFC3339Nano)
		w.LastReview = &s
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the Card wire shape.
//
// It preserves a known quirk of the reference implementation: a persisted
// stability or difficulty of exactly 0 round-trips as nil, because the
// reference's from_dict uses a truthiness check (`if source_dict["stability"]`)
// rather than an explicit None check. Do not silently fix this.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w cardJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	due, err := time.Parse(time.RFC3339Nano, w.Due)
	if err != nil {
		return fmt.Errorf("card: due: %w", err)
	}
	c.CardID = w.CardID
	c.State = State(w.State)
	c.Step = w.Step
	if w.Stability != nil && *w.Stability != 0 {
		c.Stability = w.Stability
	} else {
		c.Stability = nil
	}
	if w.Difficulty != nil && *w.Difficulty != 0 {
		c.Difficulty = w.Difficulty
	} else {
		c.Difficulty = nil
	}
	c.Due = due
	if w.LastReview != nil {
		t, err := time.Parse(time.RFC3339Nano, *w.LastReview)
		if err != nil {
			return fmt.Errorf("card: last_review: %w", err)
		}
		c.LastReview = &t
	}
	return nil
}

// ReviewLog is an append-only record of a single review event.
type ReviewLog struct {
	CardID         int64
	Rating         Rating
	ReviewDatetime time.Time
	ReviewDuration *int
}

type reviewLogJSON struct {
	CardID         int64  `json:"card_id"`
	Rating         int    `json:"rating"`
	ReviewDatetime string `json:"review_datetime"`
	ReviewDuration *int   `json:"review_duration"`
}

func (r ReviewLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(reviewLogJSON{
		CardID:         r.CardID,
		Rating:         int(r.Rating),
		ReviewDatetime: r.ReviewDatetime.Format(time.RFC3339Nano),
		ReviewDuration: r.ReviewDuration,
	})
}

func (r *ReviewLog) UnmarshalJSON(data []byte) error {
	var w reviewLogJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	dt, err := time.Parse(time.RFC3339Nano, w.ReviewDatetime)
	if err != nil {
		return fmt.Errorf("review_log: review_datetime: %w", err)
	}
	r.CardID = w.CardID
	r.Rating = Rating(w.Rating)
	r.ReviewDatetime = dt
	r.ReviewDuration = w.ReviewDuration
	return nil
}
