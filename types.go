package rebento

const (
	AppName      string = "rebento"
	DocumentType string = "profile-page"

	// MaxArtifactSize is the free tier ceiling of the storage network.
	MaxArtifactSize = 100 * 1024
)

const (
	TagContentType = "Content-Type"
	TagAppName     = "App-Name"
	TagType        = "Type"
	TagUsername    = "Username"
	TagVersion     = "Version"
	TagOwner       = "Owner"
)

type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Profile struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	Location string `json:"location,omitempty"`
}

type Theme struct {
	BackgroundColor string `json:"backgroundColor"`
	AccentColor     string `json:"accentColor"`
	DarkMode        bool   `json:"isDarkMode"`
}

type BlockKind string

const (
	KindText          BlockKind = "text"
	KindImage         BlockKind = "image"
	KindMap           BlockKind = "map"
	KindSocial        BlockKind = "social"
	KindLink          BlockKind = "link"
	KindSectionHeader BlockKind = "section-header"
)

func (k BlockKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindMap, KindSocial, KindLink, KindSectionHeader:
		return true
	default:
		return false
	}
}

type BlockSize string

const (
	SizeSmall  BlockSize = "small"
	SizeMedium BlockSize = "medium"
	SizeLarge  BlockSize = "large"
	SizeWide   BlockSize = "wide"
	SizeTall   BlockSize = "tall"
)

func (s BlockSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeWide, SizeTall:
		return true
	default:
		return false
	}
}

type SocialPlatform string

const (
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformYoutube   SocialPlatform = "youtube"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformGithub    SocialPlatform = "github"
	PlatformLinkedin  SocialPlatform = "linkedin"
	PlatformThreads   SocialPlatform = "threads"
	PlatformBehance   SocialPlatform = "behance"
	PlatformDribbble  SocialPlatform = "dribbble"
	PlatformPinterest SocialPlatform = "pinterest"
	PlatformPaypal    SocialPlatform = "paypal"
	PlatformTelegram  SocialPlatform = "telegram"
	PlatformContra    SocialPlatform = "contra"
	PlatformLayers    SocialPlatform = "layers"
)

// Block is one card of the page. Which payload fields are meaningful depends on Kind.
type Block struct {
	ID      string    `json:"id"`
	Kind    BlockKind `json:"type"`
	Size    BlockSize `json:"size"`
	BgColor string    `json:"bgColor,omitempty"`

	// text, section-header
	Content string `json:"content,omitempty"`
	Title   string `json:"title,omitempty"`

	// image
	ImageURL string `json:"imageUrl,omitempty"`
	Caption  string `json:"caption,omitempty"`

	// map
	MapLocation string `json:"mapLocation,omitempty"`

	// social
	SocialPlatform SocialPlatform `json:"socialPlatform,omitempty"`
	SocialUsername string         `json:"socialUsername,omitempty"`
	SocialURL      string         `json:"socialUrl,omitempty"`

	// link
	LinkURL         string `json:"linkUrl,omitempty"`
	LinkTitle       string `json:"linkTitle,omitempty"`
	LinkDescription string `json:"linkDescription,omitempty"`
	LinkImage       string `json:"linkImage,omitempty"`
	LinkFavicon     string `json:"linkFavicon,omitempty"`
}

// PublishedVersion is one publish event as seen through an index.
type PublishedVersion struct {
	ContentAddress string `json:"txId"`
	Owner          string `json:"owner"`
	Username       string `json:"username"`
	Version        int64  `json:"version"`
}

type CacheEntry struct {
	Username       string `json:"username"`
	ContentAddress string `json:"txId"`
	Owner          string `json:"owner"`
	Version        int64  `json:"version"`
}
