package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Asset is the persisted record of an uploaded track's audio files.
type Asset struct {
	ID               string    `json:"id"`
	Extension        string    `json:"extension"`
	MimeType         string    `json:"mime_type"`
	OriginalFilename string    `json:"original_filename"`
	Variants         Variants  `json:"variants"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Variants maps a bitrate in kbps to the URL its file is served from.
type Variants map[int]string

// Bitrates returns the bitrates present, lowest first.
func (v Variants) Bitrates() []int {
	out := make([]int, 0, len(v))
	for b := range v {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal Variants: %w", err)
	}
	return b, nil
}

func (v *Variants) Scan(src interface{}) error {
	var data []byte
	switch s := src.(type) {
	case nil:
		*v = Variants{}
		return nil
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("Variants.Scan: expected []byte, got %T", src)
	}
	out := Variants{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal Variants: %w", err)
	}
	*v = out
	return nil
}
