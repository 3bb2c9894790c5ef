package entity

import "encoding/base64"

// DescribeRequest asks for a spoken overview of the current page.
type DescribeRequest struct {
	HTML string `json:"html"`
	// Screenshot is a base64 image, either raw or as a data: URL.
	Screenshot string `json:"screenshot,omitempty"`
}

type CommandRequest struct {
	Transcript string `json:"transcript"`
	HTML       string `json:"html"`
}

type ElementRequest struct {
	Element string `json:"element"`
}

type Description struct {
	Description string `json:"description"`
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// DataURL renders the screenshot for a multi-part chat message.
func (s *Screenshot) DataURL() string {
	return "data:image/" + s.Format + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
