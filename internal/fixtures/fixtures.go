// Package fixtures loads the embedded seed dataset. The service has no
// backend of record, so this dataset is the entire catalog until restart.
package fixtures

import (
	_ "embed"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/crypto/bcrypt"

	"booklend/internal/model"
)

//go:embed seed.json
var seedJSON []byte

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Data is the decoded seed dataset.
type Data struct {
	Books         []model.Book
	Users         []model.User
	Reviews       []model.Review
	Announcements []model.Announcement
	Inquiries     []model.Inquiry
	Goals         []model.ReadingGoal
}

type seedUser struct {
	model.User
	// Demo credential, hashed at load time. The store only ever holds
	// the bcrypt hash.
	Password string `json:"password"`
}

type seedFile struct {
	Books         []model.Book         `json:"books"`
	Users         []seedUser           `json:"users"`
	Reviews       []model.Review       `json:"reviews"`
	Announcements []model.Announcement `json:"announcements"`
	Inquiries     []model.Inquiry      `json:"inquiries"`
	Goals         []model.ReadingGoal  `json:"goals"`
}

// Load decodes the embedded dataset and hashes the demo credentials.
func Load() (*Data, error) {
	var f seedFile
	if err := json.Unmarshal(seedJSON, &f); err != nil {
		return nil, fmt.Errorf("decode seed data: %w", err)
	}

	users := make([]model.User, 0, len(f.Users))
	for _, su := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed credential for %s: %w", su.Email, err)
		}
		u := su.User
		u.PasswordHash = string(hash)
		users = append(users, u)
	}

	return &Data{
		Books:         f.Books,
		Users:         users,
		Reviews:       f.Reviews,
		Announcements: f.Announcements,
		Inquiries:     f.Inquiries,
		Goals:         f.Goals,
	}, nil
}
