package fieldtype

import (
	"context"
	"html/template"
	"strconv"
	"strings"

	"videofield/internal/domain/datafield"
	"videofield/internal/domain/filestorage"
)

// VideoField is the "videofile" field type. It accepts web video only and
// renders a player above the file link.
type VideoField struct {
	*FileField
}

func NewVideoField(def *datafield.Field, data *datafield.Database, deps Deps) *VideoField {
	base := NewFileField(def, data, deps)
	base.accepted = deps.Settings.VideoAcceptedTypes
	return &VideoField{FileField: base}
}

func (f *VideoField) Validate(values map[string]SubmittedValue) string {
	file, ok := values["file"]
	if !ok {
		return "No File Found"
	}
	if id, ok := parseDraftID(file.Value); !ok || id <= 0 {
		return "No draft item id found"
	}
	return ""
}

func (f *VideoField) DisplayBrowseField(ctx context.Context, recordID int64, preview bool) (template.HTML, error) {
	content, file, fileURL, err := f.browseFile(ctx, recordID, preview)
	if err != nil || file == nil {
		return "", err
	}
	name := content.DisplayName()
	if preview {
		name = content.FileName()
	}

	player, err := f.player(file, fileURL, name)
	if err != nil {
		return "", err
	}
	link, err := render("link", linkView{
		Icon: fileIcon(f.deps.Settings.PublicBaseURL, file),
		URL:  fileURL,
		Name: name,
	})
	if err != nil {
		return "", err
	}
	return player + "<br>" + link, nil
}

func (f *VideoField) player(file *filestorage.StoredFile, fileURL, name string) (template.HTML, error) {
	if !file.IsExternal() {
		return render("video", videoView{URL: fileURL, Name: name})
	}
	switch file.RepositoryType {
	case filestorage.RepositoryGoogleDocs:
		return googleDriveFrame(file)
	default:
		return "", nil
	}
}

func parseDraftID(v string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	return id, err == nil
}
