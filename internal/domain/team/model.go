package team

type Team struct {
	ID              int64
	Name            string
	OwnerName       string
	OwnerExternalID string
}
