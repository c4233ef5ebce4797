package fieldtype_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayAddField_NewRecord(t *testing.T) {
	env := newTestEnv(t, nil)

	html, err := env.svc.Form(context.Background(), env.video.ID, testUserID, 0, nil)
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, `<div title="Lecture recording">`)
	assert.Contains(t, s, `<span class="accesshide">Recording&nbsp;Required</span></legend><div class="inline-req">`)
	assert.Contains(t, s, `data-maxfiles="1"`)
	assert.Contains(t, s, `data-maxbytes="1048576"`)
	assert.Contains(t, s, ".mp4")
	assert.Contains(t, s, `data-return-types="internal,controlled_link"`)
	assert.Greater(t, draftIDFromForm(t, s), int64(0))
}

func TestDisplayAddField_NotRequired(t *testing.T) {
	env := newTestEnv(t, nil)

	html, err := env.svc.Form(context.Background(), env.file.ID, testUserID, 0, nil)
	require.NoError(t, err)
	assert.Contains(t, string(html), `<span class="accesshide">Slides</span></legend>`)
	assert.NotContains(t, string(html), "inline-req")
}

func TestDisplayAddField_Redisplay(t *testing.T) {
	env := newTestEnv(t, nil)
	form := url.Values{env.video.FormName(): {"777"}}

	html, err := env.svc.Form(context.Background(), env.video.ID, testUserID, 0, form)
	require.NoError(t, err)
	assert.Equal(t, int64(777), draftIDFromForm(t, string(html)))
}

func TestDisplayAddField_ExistingRecordPreparesDraft(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.newRecord(t)
	env.submitUpload(t, env.video, rec, "clip.mp4", "frames")

	html, err := env.svc.Form(context.Background(), env.video.ID, testUserID, rec.ID, nil)
	require.NoError(t, err)

	draftID := draftIDFromForm(t, string(html))
	files, err := env.files.ListDraftFiles(context.Background(), testUserID, draftID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "clip.mp4", files[0].FileName)
}

func TestDisplayAddField_ExistingRecordCreatesContent(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.newRecord(t)

	_, err := env.svc.Form(context.Background(), env.video.ID, testUserID, rec.ID, nil)
	require.NoError(t, err)

	content, err := env.records.GetContent(context.Background(), env.video.ID, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, content.Content)
}

func TestDisplayAddField_EscapesDefinition(t *testing.T) {
	env := newTestEnv(t, nil)
	env.video.Name = `<script>x</script>`
	env.video.Description = `"quoted"`
	require.NoError(t, env.db.Save(env.video).Error)

	html, err := env.svc.Form(context.Background(), env.video.ID, testUserID, 0, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
	assert.Contains(t, string(html), fmt.Sprintf(`title="%s"`, "&#34;quoted&#34;"))
}

func TestSubmit_ValidationFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.newRecord(t)

	content, msg, err := env.svc.Submit(context.Background(), env.video.ID, testUserID, rec.ID, nil, "")
	require.NoError(t, err)
	assert.Nil(t, content)
	assert.Equal(t, "No File Found", msg)
}
