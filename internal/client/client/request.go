package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/mealkeeper/internal/netx"
)

// Request describes one call to the API. Path is joined to the base URL
// unless it is already absolute. When Body is set it is sent as-is with
// ContentType; a Request can therefore be sent more than once.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// JSONRequest builds a request whose body is v encoded as JSON.
func JSONRequest(method, path string, v any) (Request, error) {
	req := Request{Method: method, Path: path}
	if v == nil {
		return req, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s body: %w", path, err)
	}
	req.Body = b
	req.ContentType = "application/json"
	return req, nil
}

// MealImageRequest builds the multipart upload for POST /meal/image with the
// file in the "image" field.
func MealImageRequest(filename string, data []byte) (Request, error) {
	body, ct, err := netx.MultipartFile("image", filename, bytes.NewReader(data))
	if err != nil {
		return Request{}, fmt.Errorf("build upload body: %w", err)
	}
	return Request{Method: "POST", Path: "/meal/image", Body: body, ContentType: ct}, nil
}

func mealsQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func mealPath(id string) string {
	return "/meals/" + url.PathEscape(id)
}
