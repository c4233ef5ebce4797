package fieldtype

import (
	"html/template"
	"net/url"
	"strings"

	"videofield/internal/domain/filestorage"
)

const googleDrivePreviewBase = "https://drive.google.com/file/d/"

var templates = template.Must(template.New("fieldtype").Parse(`
{{- define "add" -}}
<div title="{{.Description}}"><fieldset><legend><span class="accesshide">{{.Name}}
{{- if .Required}}&nbsp;Required</span></legend><div class="inline-req">{{template "icon" .RequiredIcon}}</div>
{{- else}}</span></legend>{{end -}}
<input type="hidden" name="{{.InputName}}" value="{{.ItemID}}" />
<div class="mod-data-input">{{template "filemanager" .Widget}}</div></fieldset></div>
{{- end -}}

{{- define "filemanager" -}}
<div class="filemanager" data-itemid="{{.ItemID}}" data-maxbytes="{{.MaxBytes}}" data-maxfiles="{{.MaxFiles}}" data-accepted-types="{{.AcceptedTypes}}" data-return-types="{{.ReturnTypes}}" data-upload-url="{{.UploadURL}}" data-link-url="{{.LinkURL}}" data-list-url="{{.ListURL}}">
<input type="file" name="file" accept="{{.AcceptedTypes}}" /></div>
{{- end -}}

{{- define "icon" -}}
<img class="icon" alt="{{.Alt}}" title="{{.Alt}}" src="{{.Src}}" width="16" height="16" />
{{- end -}}

{{- define "link" -}}
{{template "icon" .Icon}}&nbsp;<a class="data-field-link" href="{{.URL}}" >{{.Name}}</a>
{{- end -}}

{{- define "video" -}}
<video controls="controls"><source src="{{.URL}}">{{.Name}}</video>
{{- end -}}

{{- define "gdrive" -}}
<iframe src="` + googleDrivePreviewBase + `{{.}}/preview" width="640" height="480" allow="autoplay"></iframe>
{{- end -}}
`))

type iconView struct {
	Alt string
	Src string
}

type widgetView struct {
	ItemID        int64
	MaxBytes      int64
	MaxFiles      int
	AcceptedTypes string
	ReturnTypes   string
	UploadURL     string
	LinkURL       string
	ListURL       string
}

type addView struct {
	Description  string
	Name         string
	Required     bool
	RequiredIcon iconView
	InputName    string
	ItemID       int64
	Widget       widgetView
}

type linkView struct {
	Icon iconView
	URL  string
	Name string
}

type videoView struct {
	URL  string
	Name string
}

func render(name string, data any) (template.HTML, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func pixURL(base, icon string) string {
	return strings.TrimRight(base, "/") + "/pix/" + icon + ".svg"
}

func fileIcon(base string, f *filestorage.StoredFile) iconView {
	return iconView{
		Alt: filestorage.MimeDescription(f.MimeType),
		Src: pixURL(base, filestorage.FileIcon(f.MimeType)),
	}
}

// googleDriveFrame renders the Drive preview of an external file, or ""
// when its reference carries no id.
func googleDriveFrame(f *filestorage.StoredFile) (template.HTML, error) {
	ref, err := filestorage.ParseReference(f.Reference)
	if err != nil || ref.ID == "" {
		return "", nil
	}
	return render("gdrive", url.PathEscape(ref.ID))
}
