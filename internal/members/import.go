package members

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/belmonts/belix/internal/repository"
)

// ID accepts a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("member id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// ImportRecord is one entry of a user.json export.
type ImportRecord struct {
	MemberID        ID     `json:"member_id"`
	DiscordUsername string `json:"discord_username"`
	Name            string `json:"name"`
	DateOfBirth     string `json:"date_of_birth"`
	BelmontsPoints  int    `json:"belmonts_points"`
	AvatarURL       string `json:"avatar_url"`
}

func ParseImport(b []byte) ([]ImportRecord, error) {
	var records []ImportRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return records, nil
}

var birthdayLayouts = []string{time.DateOnly, time.RFC3339, "02-01-2006", "02/01/2006"}

func parseBirthday(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date of birth %q", s)
}

// Input maps the record onto the members table.
func (r ImportRecord) Input() (repository.InsertMemberInput, error) {
	if r.MemberID == "" {
		return repository.InsertMemberInput{}, fmt.Errorf("member %q has no member_id", r.Name)
	}
	birthday, err := parseBirthday(r.DateOfBirth)
	if err != nil {
		return repository.InsertMemberInput{}, err
	}
	username := r.DiscordUsername
	if username == "" {
		username = r.Name
	}
	return repository.InsertMemberInput{
		MemberID:        string(r.MemberID),
		Username:        username,
		DisplayName:     r.Name,
		DiscordUsername: r.DiscordUsername,
		Role:            "Member",
		Birthday:        birthday,
		BelmontsPoints:  r.BelmontsPoints,
	}, nil
}

type ImportResult struct {
	Inserted int
	Failed   int
}

// ImportMembers inserts every record, continuing past failures.
func ImportMembers(ctx context.Context, repo repository.MemberRepository, records []ImportRecord) ImportResult {
	var res ImportResult
	for _, r := range records {
		in, err := r.Input()
		if err == nil {
			err = repo.InsertMember(ctx, in)
		}
		if err != nil {
			slog.Error("failed to insert member", "error", err, "name", r.Name, "member_id", string(r.MemberID))
			res.Failed++
			continue
		}
		slog.Info("inserted member", "name", r.Name, "member_id", string(r.MemberID))
		res.Inserted++
	}
	return res
}
