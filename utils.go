package rebento

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func JsonPrint(tag string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: error marshaling: %v\n", tag, err)
		return
	}
	fmt.Printf("%s: %s\n", tag, string(b))
}

// NormalizeUsername must stay identical for publish and resolve.
func NormalizeUsername(raw string) string {
	s := strings.ToLower(raw)
	s = strings.TrimPrefix(s, "@")

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUsernameChar(c) {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isUsernameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '.' || c == '_' || c == '-'
}

func TagValue(tags []Tag, name string) (string, bool) {
	for _, t := range tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// ParseVersion returns 0 for a missing or malformed version.
func ParseVersion(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func IsRemoteURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// IsOwner compares byte for byte. No normalization is applied to addresses.
func IsOwner(viewer, owner string) bool {
	return viewer != "" && owner != "" && viewer == owner
}

func PublishTags(username, version, owner string) []Tag {
	return []Tag{
		{Name: TagContentType, Value: "text/html"},
		{Name: TagAppName, Value: AppName},
		{Name: TagType, Value: DocumentType},
		{Name: TagUsername, Value: username},
		{Name: TagVersion, Value: version},
		{Name: TagOwner, Value: owner},
	}
}
