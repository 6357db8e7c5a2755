package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `ttsprep keeps the chapters of each project in a dense order: 1, 2, ... N.

- create_chapter appends after the last chapter. Untitled chapters are named "Chapter N".
- move_chapter shifts the chapters in between by one. Titles of the form "Chapter N" follow
  their new number; any other title is kept.
- remove_chapter closes the gap it leaves.
- Omit project_id to work in the default project.

Errors carry a code and a recovery_hint. On CONFLICT reload with list_chapters and retry.
On INCONSISTENT_ORDER call normalize_chapters once.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "ttsprep://docs/ordering",
		Name:        "ordering",
		Title:       "Chapter ordering rules",
		Description: "How order numbers and default titles change on append, move and remove",
		Content: `# Chapter ordering

Order numbers in a project always run 1..N with no gaps or duplicates.

## Append

The new chapter gets N+1. It touches no other chapter.

## Move from old to target

- target < old: chapters at target..old-1 move one later.
- target > old: chapters at old+1..target move one earlier.
- target == old: nothing is written.
- target outside 1..N is rejected with INVALID_TARGET.

## Remove

Every chapter after the removed one moves one earlier.

## Titles

A chapter whose title is exactly "Chapter k" while it sits at k is renamed to match
its new number when it moves. Any other title is left alone. Renaming a chapter to
"Chapter k" at position k makes it behave like an untitled chapter from then on.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
