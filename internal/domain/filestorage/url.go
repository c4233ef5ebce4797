package filestorage

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// PluginFilePrefix is the route prefix that serves stored files.
const PluginFilePrefix = "/pluginfile"

// PluginFileURL builds the public URL of a stored file:
// {base}/pluginfile/{context}/{component}/{area}/{item}{path}{name}.
func PluginFileURL(base string, f *StoredFile) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteString(PluginFilePrefix)
	b.WriteString("/" + strconv.FormatInt(f.ContextID, 10))
	b.WriteString("/" + url.PathEscape(f.Component))
	b.WriteString("/" + url.PathEscape(f.FileArea))
	b.WriteString("/" + strconv.FormatInt(f.ItemID, 10))
	b.WriteString(escapePath(f.FilePath))
	b.WriteString(url.PathEscape(f.FileName))
	return b.String()
}

// SplitFilePath splits the trailing part of a pluginfile URL ("/a/b.mp4")
// into a file path ("/a/") and a file name ("b.mp4").
func SplitFilePath(p string) (filePath, fileName string) {
	p = "/" + strings.TrimLeft(p, "/")
	dir, name := path.Split(p)
	return dir, name
}

func escapePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return "/" + strings.Join(parts, "/") + "/"
}

// NormalizeFileName strips any directory part and surrounding spaces.
// It returns "" for names that cannot be stored.
func NormalizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(path.Base(name))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
