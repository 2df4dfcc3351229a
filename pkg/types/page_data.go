package types

type NavbarData struct {
	IsAuthenticated bool
	UserID          string
	UserEmail       string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	Notice string
	Error  string
	CustID string
}

type LoginPageData struct {
	BasePageData
	Error string
	Email string
}

type ConfirmDetailsPageData struct {
	BasePageData
	DraftID       string
	CustID        string
	UploadedFiles []string
	Documents     []DocumentCard
	NoData        bool

	AddField     *AddFieldDialog
	ConflictOpen bool
	Result       *ResultDialog

	// DefaultAction is where pressing Enter in a field submits the form.
	DefaultAction string
}

// DocumentCard is one editable document grid on the confirm page.
type DocumentCard struct {
	Index  int
	Number int
	Title  string
	Fields []FieldInput
}

type FieldInput struct {
	Index int
	Key   string
	Label string
	Value string
	Null  bool
}

type AddFieldDialog struct {
	DocIndex      int
	DocumentTitle string
	Key           string
	Value         string
}

type UserDetailsPageData struct {
	BasePageData
	CustID    string
	Found     bool
	Documents []DocumentView
	Links     []Link
}

// DocumentView is one read-only document card on the user details page.
type DocumentView struct {
	Header string
	Rows   []DetailRow
}

type DetailRow struct {
	Label string
	Value string
}
