package mcp

type CreateProjectParams struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type GetProjectParams struct {
	ID string `json:"id,omitempty"`
}

type CreateChapterParams struct {
	ProjectID string `json:"project_id,omitempty"`
	Title     string `json:"title,omitempty"`
}

type ListChaptersParams struct {
	ProjectID string `json:"project_id,omitempty"`
}

type GetChapterParams struct {
	ID string `json:"id"`
}

type MoveChapterParams struct {
	ProjectID   string `json:"project_id,omitempty"`
	ID          string `json:"id"`
	OrderNumber int    `json:"order_number"`
}

type RenameChapterParams struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type RemoveChapterParams struct {
	ID string `json:"id"`
}

type NormalizeChaptersParams struct {
	ProjectID string `json:"project_id,omitempty"`
}

type SearchChaptersParams struct {
	ProjectID string `json:"project_id,omitempty"`
	Query     string `json:"query"`
	Limit     int    `json:"limit,omitempty"`
}

type ListLabelsParams struct {
	ChapterID string `json:"chapter_id"`
}

type RecentActivityParams struct {
	ProjectID string  `json:"project_id,omitempty"`
	ChapterID *string `json:"chapter_id,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}
