package pages

// Block is one titled section of a static page.
type Block struct {
	Heading string
	Body    string
}

// StaticPage is the content of a marketing page without live data.
type StaticPage struct {
	Title  string
	Lead   string
	Blocks []Block
}

// Static holds the marketing copy keyed by route name.
var Static = map[string]StaticPage{
	"about": {
		Title: "About CivicFund",
		Lead:  "CivicFund connects voters with the local campaigns and causes they care about.",
		Blocks: []Block{
			{Heading: "Our mission", Body: "Make small-dollar civic giving simple, transparent and accountable."},
			{Heading: "Who we are", Body: "A small team of organizers, engineers and compliance specialists."},
		},
	},
	"how-it-works": {
		Title: "How it works",
		Lead:  "Three steps from browsing to giving.",
		Blocks: []Block{
			{Heading: "1. Find a campaign", Body: "Browse active campaigns by category or search by name."},
			{Heading: "2. Donate", Body: "Give once or set up a monthly pledge. Guests are welcome."},
			{Heading: "3. Follow along", Body: "Registered donors track their giving on the dashboard."},
		},
	},
	"contact": {
		Title: "Contact us",
		Lead:  "We usually reply within two business days.",
		Blocks: []Block{
			{Heading: "Email", Body: "support@civicfund.example"},
			{Heading: "Press", Body: "press@civicfund.example"},
		},
	},
	"faq": {
		Title: "Frequently asked questions",
		Blocks: []Block{
			{Heading: "Is my donation tax deductible?", Body: "Contributions to political campaigns are generally not tax deductible."},
			{Heading: "Can I cancel a monthly pledge?", Body: "Yes, from the settings page of your dashboard at any time."},
			{Heading: "How are campaigns vetted?", Body: "Every campaign is reviewed by our team before it goes live."},
			{Heading: "Why do I need a verification code?", Body: "Sign-in uses a six-digit one-time code as a second factor."},
		},
	},
	"privacy": {
		Title: "Privacy policy",
		Lead:  "We collect only what contribution reporting requires.",
		Blocks: []Block{
			{Heading: "What we store", Body: "Your name, email, and the donations you make."},
			{Heading: "What we share", Body: "Donation records with the campaigns you support, as required by law."},
		},
	},
	"terms": {
		Title: "Terms of service",
		Blocks: []Block{
			{Heading: "Eligibility", Body: "Donors must be eligible to contribute under applicable election law."},
			{Heading: "Refunds", Body: "Refund requests are handled by the receiving campaign."},
		},
	},
}
