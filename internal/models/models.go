package models

import "time"

// Post status and payment plan frequency enumerations. Frequency values
// other than the first three match billing periods per year, kept for
// compatibility with books exported from the old system.
const (
	StatusDraft     = 0
	StatusPublished = 1

	FreqNone       = 0
	FreqMonthly    = 1
	FreqBiMonthly  = 2
	FreqQuarterly  = 3
	FreqSemiAnnual = 6
	FreqAnnual     = 12
)

var FrequencyLabels = map[int]string{
	FreqNone:       "None",
	FreqMonthly:    "Monthly",
	FreqBiMonthly:  "Bi-Monthly",
	FreqQuarterly:  "Quarterly",
	FreqSemiAnnual: "Semi-annual",
	FreqAnnual:     "Annual",
}

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool

	Sessions []Session `gorm:"constraint:OnDelete:CASCADE"`
	Posts    []Post    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

type Session struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Token     string `gorm:"uniqueIndex;not null"`
	UserID    uint
	ExpiresAt time.Time
}

type Sponsor struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	FirstName  string `gorm:"size:30;not null"`
	MiddleName string `gorm:"size:30"`
	LastName   string `gorm:"size:30;not null"`
	Street     string `gorm:"size:70"`
	City       string `gorm:"size:50"`
	State      string `gorm:"size:2"`
	Zip        string `gorm:"size:10"`
	Email      string `gorm:"size:100"`
	Telephone  string `gorm:"size:15"`
	IsParent   bool   `gorm:"default:true"`
	Notes      string
}

func (s Sponsor) DisplayName() string { return s.LastName + ", " + s.FirstName }

type MartialArtist struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	FirstName  string `gorm:"size:30;not null"`
	MiddleName string `gorm:"size:30"`
	LastName   string `gorm:"size:30;not null"`
	Email      string `gorm:"size:100"`
	Telephone  string `gorm:"size:15"`
	Birthday   *time.Time
	IsFemale   bool
	Active     bool `gorm:"default:true"`
	Notes      string
	ImagePath  string

	EnrollmentDate time.Time

	// Sponsor and payment plan outlive nothing here: deleting the
	// referenced record nulls the FK instead of removing the artist.
	SponsorID     *uint
	Sponsor       *Sponsor `gorm:"constraint:OnDelete:SET NULL"`
	PaymentPlanID *uint
	PaymentPlan   *PaymentPlan `gorm:"constraint:OnDelete:SET NULL"`

	// Optional linked login for self-service views.
	UserID *uint `gorm:"uniqueIndex"`
	User   *User `gorm:"constraint:OnDelete:SET NULL"`

	Styles []Style `gorm:"many2many:martial_artist_styles;constraint:OnDelete:CASCADE"`

	Ranks           []Rank           `gorm:"constraint:OnDelete:CASCADE"`
	Invoices        []Invoice        `gorm:"foreignKey:PurchaserID;constraint:OnDelete:CASCADE"`
	TuitionPayments []TuitionPayment `gorm:"foreignKey:PayerID;constraint:OnDelete:CASCADE"`
}

func (ma MartialArtist) DisplayName() string { return ma.LastName + ", " + ma.FirstName }

type Style struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title      string `gorm:"size:30;not null"`
	Originator string `gorm:"size:30"`
	Notes      string

	RankTypes []RankType `gorm:"constraint:OnDelete:CASCADE"`
}

type RankType struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	StyleID uint
	Style   Style

	Ordinal      int    `gorm:"default:0;not null"` // sort key within the style
	Title        string `gorm:"size:100;not null"`
	Indicator    string `gorm:"size:50"`
	TimeInGrade  *int   // months required at the previous grade
	TimeInStyle  *int   // months required in the style overall
	TestRequired bool
	Notes        string
}

type Rank struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	MartialArtistID uint
	MartialArtist   MartialArtist

	// A rank type with awarded ranks cannot be deleted.
	RankTypeID uint
	RankType   RankType `gorm:"constraint:OnDelete:RESTRICT"`

	TestDate  *time.Time
	AwardDate time.Time `gorm:"not null"`
	Tested    bool      `gorm:"default:true"`
	Notes     string
}

type TrainingClass struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Start time.Time `gorm:"not null"`
	End   time.Time `gorm:"not null"`
	Notes string

	Instructors []MartialArtist `gorm:"many2many:training_class_instructors;constraint:OnDelete:CASCADE"`
	Students    []MartialArtist `gorm:"many2many:training_class_students;constraint:OnDelete:CASCADE"`
	Focus       []Style         `gorm:"many2many:training_class_focus;constraint:OnDelete:CASCADE"`
}

// DurationMins returns the class length in minutes, fractional minutes
// preserved (18:00:00 to 18:45:30 is 45.5).
func (tc TrainingClass) DurationMins() float64 {
	return tc.End.Sub(tc.Start).Minutes()
}

type PaymentPlan struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title       string `gorm:"size:30;not null"`
	AmountCents int64
	Frequency   int `gorm:"default:1"`
	Notes       string
}

func (pp PaymentPlan) FrequencyLabel() string {
	if l, ok := FrequencyLabels[pp.Frequency]; ok {
		return l
	}
	return "Unknown"
}

type TuitionPayment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PaymentPlanID *uint
	PaymentPlan   *PaymentPlan `gorm:"constraint:OnDelete:SET NULL"`

	PayerID uint
	Payer   MartialArtist

	DatePaid  time.Time `gorm:"not null"`
	PaidCents int64
	Notes     string
}

type Item struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name           string `gorm:"size:50;not null"`
	Make           string `gorm:"size:50"`
	SKU            string `gorm:"size:30"`
	Size           string `gorm:"size:10"`
	Color          string `gorm:"size:10"`
	WholesaleCents int64
	RetailCents    int64
	QuantityOnHand int `gorm:"default:0"`
	Notes          string

	LineItems []LineItem `gorm:"constraint:OnDelete:CASCADE"`
}

type Invoice struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PurchaserID uint
	Purchaser   MartialArtist

	DateOrdered   time.Time `gorm:"index:idx_invoices_ordered,sort:desc"`
	DateCompleted *time.Time
	Notes         string

	LineItems []LineItem `gorm:"constraint:OnDelete:CASCADE"`
}

func (inv Invoice) IsCompleted() bool { return inv.DateCompleted != nil }

type LineItem struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	InvoiceID uint
	ItemID    uint
	Item      Item

	Quantity int `gorm:"default:1"`
}

type Post struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title string `gorm:"size:200;uniqueIndex;not null"`
	// Slug is unique together with the publish date, so an old slug can be
	// reused by a later post.
	Slug     string    `gorm:"size:200;uniqueIndex:idx_posts_slug_publish;not null"`
	Publish  time.Time `gorm:"index:idx_posts_publish,sort:desc;uniqueIndex:idx_posts_slug_publish"`
	AuthorID uint
	Author   User
	Body     string
	Status   int `gorm:"default:0"`

	Comments []Comment `gorm:"constraint:OnDelete:CASCADE"`
}

func (p Post) IsPublished() bool { return p.Status == StatusPublished }

type Comment struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PostID uint

	Name  string `gorm:"size:80;not null"`
	Email string `gorm:"size:100"`
	Body  string `gorm:"not null"`

	// Comments stay hidden until approved by a moderator.
	Active bool `gorm:"default:false"`
}
