package gateway

import (
	"github.com/totegamma/rebento"
)

const profileQuery = `
query FetchProfile($username: String!, $first: Int!) {
  transactions(
    tags: [
      { name: "App-Name", values: ["rebento"] }
      { name: "Type", values: ["profile-page"] }
      { name: "Username", values: [$username] }
    ]
    sort: HEIGHT_DESC
    first: $first
  ) {
    edges {
      node {
        id
        tags {
          name
          value
        }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data struct {
		Transactions struct {
			Edges []edge `json:"edges"`
		} `json:"transactions"`
	} `json:"data"`
}

type edge struct {
	Node struct {
		ID   string        `json:"id"`
		Tags []rebento.Tag `json:"tags"`
	} `json:"node"`
}

// version reads the publish record carried by the edge's tags. Missing or
// malformed versions read as 0.
func (e edge) version() rebento.PublishedVersion {
	owner, _ := rebento.TagValue(e.Node.Tags, rebento.TagOwner)
	username, _ := rebento.TagValue(e.Node.Tags, rebento.TagUsername)
	version, _ := rebento.TagValue(e.Node.Tags, rebento.TagVersion)
	return rebento.PublishedVersion{
		ContentAddress: e.Node.ID,
		Owner:          owner,
		Username:       username,
		Version:        rebento.ParseVersion(version),
	}
}
