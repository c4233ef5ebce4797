package fieldtype

// LinkRequest links a file of an external repository into a draft.
type LinkRequest struct {
	FileName   string `json:"filename" validate:"required,max=255"`
	Repository string `json:"repository" validate:"required"`
	Reference  string `json:"reference" validate:"required,json"`
}

type CreateRecordResponse struct {
	ID     int64 `json:"id"`
	DataID int64 `json:"data_id"`
	UserID int64 `json:"user_id"`
}
