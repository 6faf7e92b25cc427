// Package fixtures holds the demo data the server seeds into empty stores:
// accounts, campaigns, pending registrations, donations and blog posts.
package fixtures

import (
	"embed"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	authmodels "civicfund/internal/auth/models"
	blogmodels "civicfund/internal/blog/models"
	campaignmodels "civicfund/internal/campaign/models"
	donationmodels "civicfund/internal/donation/models"
	registrationmodels "civicfund/internal/registration/models"
	id "civicfund/pkg/domain"
)

//go:embed data/*.yaml
var embedded embed.FS

// unsetHash stands in for password hashes until Seed assigns real ones.
const unsetHash = "unset"

type userFile struct {
	Password string       `yaml:"password"`
	Users    []userRecord `yaml:"users"`
}

type userRecord struct {
	ID       string `yaml:"id"`
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
	Status   string `yaml:"status"`
}

type campaignFile struct {
	Campaigns []campaignRecord `yaml:"campaigns"`
}

type campaignRecord struct {
	ID          string    `yaml:"id"`
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Summary     string    `yaml:"summary"`
	Description string    `yaml:"description"`
	Category    string    `yaml:"category"`
	Organizer   string    `yaml:"organizer"`
	OrganizerID string    `yaml:"organizer_id"`
	GoalCents   int64     `yaml:"goal_cents"`
	RaisedCents int64     `yaml:"raised_cents"`
	DonorCount  int       `yaml:"donor_count"`
	ImageURL    string    `yaml:"image_url"`
	Featured    bool      `yaml:"featured"`
	Status      string    `yaml:"status"`
	CreatedAt   time.Time `yaml:"created_at"`
}

type registrationFile struct {
	Registrations []registrationRecord `yaml:"registrations"`
}

type registrationRecord struct {
	ID           string           `yaml:"id"`
	FullName     string           `yaml:"full_name"`
	Email        string           `yaml:"email"`
	Phone        string           `yaml:"phone"`
	Role         string           `yaml:"role"`
	Organization string           `yaml:"organization"`
	Documents    []documentRecord `yaml:"documents"`
	SubmittedAt  time.Time        `yaml:"submitted_at"`
}

type documentRecord struct {
	Kind        string `yaml:"kind"`
	FileName    string `yaml:"file_name"`
	ContentType string `yaml:"content_type"`
	SizeBytes   int64  `yaml:"size_bytes"`
}

type donationFile struct {
	Donations []donationRecord `yaml:"donations"`
}

type donationRecord struct {
	ID          string    `yaml:"id"`
	CampaignID  string    `yaml:"campaign_id"`
	DonorID     string    `yaml:"donor_id"`
	DonorName   string    `yaml:"donor_name"`
	Email       string    `yaml:"email"`
	AmountCents int64     `yaml:"amount_cents"`
	Frequency   string    `yaml:"frequency"`
	Anonymous   bool      `yaml:"anonymous"`
	Message     string    `yaml:"message"`
	CreatedAt   time.Time `yaml:"created_at"`
}

type postFile struct {
	Posts []postRecord `yaml:"posts"`
}

type postRecord struct {
	ID          string    `yaml:"id"`
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Excerpt     string    `yaml:"excerpt"`
	Content     string    `yaml:"content"`
	Category    string    `yaml:"category"`
	Tags        []string  `yaml:"tags"`
	Author      string    `yaml:"author"`
	PublishedAt time.Time `yaml:"published_at"`
	Views       int64     `yaml:"views"`
	Featured    bool      `yaml:"featured"`
}

// Account is a seeded user with the plaintext password it signs in with.
type Account struct {
	User     *authmodels.User
	Password string
}

// Dataset is the parsed fixture set. Registrations carry no password hash
// until the seeder assigns one.
type Dataset struct {
	Accounts      []Account
	Campaigns     []*campaignmodels.Campaign
	Registrations []*registrationmodels.Registration
	Donations     []*donationmodels.Donation
	Posts         []*blogmodels.Post
}

// Load parses the embedded fixture files.
func Load() (*Dataset, error) {
	return LoadFS(embedded)
}

// LoadFS parses fixture files from fsys, which must contain the data/
// directory layout of the embedded set.
func LoadFS(fsys fs.FS) (*Dataset, error) {
	ds := &Dataset{}

	var users userFile
	if err := decode(fsys, "data/users.yaml", &users); err != nil {
		return nil, err
	}
	for i, rec := range users.Users {
		account, err := rec.account(users.Password)
		if err != nil {
			return nil, fmt.Errorf("users.yaml entry %d: %w", i, err)
		}
		ds.Accounts = append(ds.Accounts, account)
	}

	var campaigns campaignFile
	if err := decode(fsys, "data/campaigns.yaml", &campaigns); err != nil {
		return nil, err
	}
	for i, rec := range campaigns.Campaigns {
		c, err := rec.campaign()
		if err != nil {
			return nil, fmt.Errorf("campaigns.yaml entry %d: %w", i, err)
		}
		ds.Campaigns = append(ds.Campaigns, c)
	}

	var registrations registrationFile
	if err := decode(fsys, "data/registrations.yaml", &registrations); err != nil {
		return nil, err
	}
	for i, rec := range registrations.Registrations {
		r, err := rec.registration()
		if err != nil {
			return nil, fmt.Errorf("registrations.yaml entry %d: %w", i, err)
		}
		ds.Registrations = append(ds.Registrations, r)
	}

	var donations donationFile
	if err := decode(fsys, "data/donations.yaml", &donations); err != nil {
		return nil, err
	}
	for i, rec := range donations.Donations {
		d, err := rec.donation()
		if err != nil {
			return nil, fmt.Errorf("donations.yaml entry %d: %w", i, err)
		}
		ds.Donations = append(ds.Donations, d)
	}

	var posts postFile
	if err := decode(fsys, "data/posts.yaml", &posts); err != nil {
		return nil, err
	}
	for i, rec := range posts.Posts {
		p, err := rec.post()
		if err != nil {
			return nil, fmt.Errorf("posts.yaml entry %d: %w", i, err)
		}
		ds.Posts = append(ds.Posts, p)
	}
	return ds, nil
}

func decode(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (r userRecord) account(password string) (Account, error) {
	userID, err := id.ParseUserID(r.ID)
	if err != nil {
		return Account{}, err
	}
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return Account{}, err
	}
	// The hash and timestamps are assigned at seed time.
	u, err := authmodels.NewUser(userID, r.Email, r.FullName, unsetHash, role, time.Time{})
	if err != nil {
		return Account{}, err
	}
	if r.Status != "" {
		if u.Status, err = authmodels.ParseStatus(r.Status); err != nil {
			return Account{}, err
		}
	}
	return Account{User: u, Password: password}, nil
}

func (r campaignRecord) campaign() (*campaignmodels.Campaign, error) {
	campaignID, err := id.ParseCampaignID(r.ID)
	if err != nil {
		return nil, err
	}
	organizerID, err := id.ParseUserID(r.OrganizerID)
	if err != nil {
		return nil, fmt.Errorf("organizer_id: %w", err)
	}
	status := campaignmodels.Status(r.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown campaign status %q", r.Status)
	}
	c, err := campaignmodels.NewCampaign(campaignID, campaignmodels.Draft{
		Title:       r.Title,
		Summary:     r.Summary,
		Description: r.Description,
		Category:    r.Category,
		Organizer:   r.Organizer,
		OrganizerID: organizerID,
		GoalCents:   r.GoalCents,
		ImageURL:    r.ImageURL,
	}, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if r.Slug != "" {
		c.Slug = r.Slug
	}
	c.Status = status
	c.RaisedCents = r.RaisedCents
	c.DonorCount = r.DonorCount
	c.Featured = r.Featured
	return c, nil
}

func (r registrationRecord) registration() (*registrationmodels.Registration, error) {
	registrationID, err := id.ParseRegistrationID(r.ID)
	if err != nil {
		return nil, err
	}
	role, err := id.ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	docs := make([]registrationmodels.DocumentMeta, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, registrationmodels.DocumentMeta{
			Kind:        registrationmodels.DocumentKind(d.Kind),
			FileName:    d.FileName,
			ContentType: d.ContentType,
			SizeBytes:   d.SizeBytes,
		})
	}
	return registrationmodels.NewRegistration(registrationID, registrationmodels.Submission{
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		Role:         role,
		Organization: r.Organization,
		Documents:    docs,
		PasswordHash: unsetHash,
	}, r.SubmittedAt)
}

func (r donationRecord) donation() (*donationmodels.Donation, error) {
	donationID, err := id.ParseDonationID(r.ID)
	if err != nil {
		return nil, err
	}
	campaignID, err := id.ParseCampaignID(r.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign_id: %w", err)
	}
	var donorID id.UserID
	if r.DonorID != "" {
		if donorID, err = id.ParseUserID(r.DonorID); err != nil {
			return nil, fmt.Errorf("donor_id: %w", err)
		}
	}
	freq := donationmodels.Frequency(r.Frequency)
	if !freq.IsValid() {
		return nil, fmt.Errorf("unknown frequency %q", r.Frequency)
	}
	if r.AmountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return &donationmodels.Donation{
		ID:          donationID,
		CampaignID:  campaignID,
		DonorID:     donorID,
		DonorName:   r.DonorName,
		Email:       r.Email,
		AmountCents: r.AmountCents,
		Currency:    donationmodels.CurrencyUSD,
		Frequency:   freq,
		Anonymous:   r.Anonymous,
		Message:     r.Message,
		CreatedAt:   r.CreatedAt,
	}, nil
}

func (r postRecord) post() (*blogmodels.Post, error) {
	postID, err := id.ParsePostID(r.ID)
	if err != nil {
		return nil, err
	}
	return blogmodels.NewPost(blogmodels.Post{
		ID:          postID,
		Slug:        r.Slug,
		Title:       r.Title,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Category:    r.Category,
		Tags:        r.Tags,
		Author:      r.Author,
		PublishedAt: r.PublishedAt,
		Views:       r.Views,
		Featured:    r.Featured,
	})
}
