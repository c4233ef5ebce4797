package filestorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluginFileURL(t *testing.T) {
	f := &StoredFile{ContextID: 12, Component: "mod_data", FileArea: "content", ItemID: 7, FilePath: "/", FileName: "my clip #1.mp4"}
	assert.Equal(t, "https://lms.example.org/pluginfile/12/mod_data/content/7/my%20clip%20%231.mp4", PluginFileURL("https://lms.example.org/", f))

	f.FilePath = "/week 1/"
	assert.Equal(t, "/pluginfile/12/mod_data/content/7/week%201/my%20clip%20%231.mp4", PluginFileURL("", f))
}

func TestSplitFilePath(t *testing.T) {
	cases := map[string][2]string{
		"/clip.mp4":       {"/", "clip.mp4"},
		"clip.mp4":        {"/", "clip.mp4"},
		"/week1/clip.mp4": {"/week1/", "clip.mp4"},
		"/a/b/":           {"/a/b/", ""},
	}
	for in, want := range cases {
		p, n := SplitFilePath(in)
		assert.Equal(t, want[0], p, in)
		assert.Equal(t, want[1], n, in)
	}
}

func TestNormalizeFileName(t *testing.T) {
	assert.Equal(t, "clip.mp4", NormalizeFileName(" clip.mp4 "))
	assert.Equal(t, "clip.mp4", NormalizeFileName("../../etc/clip.mp4"))
	assert.Equal(t, "clip.mp4", NormalizeFileName(`C:\Users\me\clip.mp4`))
	assert.Empty(t, NormalizeFileName(".."))
	assert.Empty(t, NormalizeFileName(""))
}
