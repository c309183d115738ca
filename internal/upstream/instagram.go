package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/normalization"
)

// DefaultInstagramHost is the proxy host fronting the photo/video feed API.
const DefaultInstagramHost = "instagram-premium-api-2023.p.rapidapi.com"

// Instagram is the Platform adapter for the photo/video feed API.
type Instagram struct {
	client *Client
}

// NewInstagram creates an Instagram adapter on top of the shared client.
func NewInstagram(client *Client) *Instagram {
	return &Instagram{client: client}
}

var _ Platform = (*Instagram)(nil)

// Name returns domain.PlatformInstagram.
func (g *Instagram) Name() domain.Platform {
	return domain.PlatformInstagram
}

var instagramPKChain = []normalization.Accessor{
	normalization.Field("pk"),
	normalization.Field("user", "pk"),
	normalization.Field("data", "pk"),
}

// ResolveIdentifier resolves a handle to its numeric pk.
func (g *Instagram) ResolveIdentifier(ctx context.Context, handle string) (*domain.ProfileIdentifier, error) {
	lookup := fmt.Sprintf("https://%s/v1/user/by/username?username=%s", g.client.Host(), url.QueryEscape(handle))

	var body map[string]any
	if err := g.client.GetJSON(ctx, lookup, "user/by/username", &body); err != nil {
		return nil, err
	}

	pk, ok := probeString(body, instagramPKChain)
	if !ok {
		return nil, ErrNoIdentifier
	}
	return &domain.ProfileIdentifier{Primary: pk}, nil
}

// FetchPage requests one chunk of clips. The endpoint answers with a
// two-element array: the record list and the next end cursor.
func (g *Instagram) FetchPage(ctx context.Context, id *domain.ProfileIdentifier, cursor string) (*Page, error) {
	pageURL := fmt.Sprintf("https://%s/v1/user/clips/chunk?user_id=%s", g.client.Host(), url.QueryEscape(id.Primary))
	if cursor != "" {
		pageURL += "&end_cursor=" + url.QueryEscape(cursor)
	}

	var body []json.RawMessage
	if err := g.client.GetJSON(ctx, pageURL, "user/clips/chunk", &body); err != nil {
		return nil, err
	}

	page := &Page{}
	if len(body) > 0 {
		var list []any
		if err := json.Unmarshal(body[0], &list); err == nil {
			page.Records = make([]normalization.Raw, 0, len(list))
			for _, item := range list {
				if rec, ok := item.(map[string]any); ok {
					page.Records = append(page.Records, rec)
				}
			}
		}
	}
	if len(body) > 1 {
		var next string
		if err := json.Unmarshal(body[1], &next); err == nil && next != "" {
			page.NextCursor = next
			page.HasMore = true
		}
	}
	return page, nil
}

// Chains returns the Instagram post field chains.
func (g *Instagram) Chains() normalization.Chains {
	return normalization.Chains{
		ID: []normalization.Accessor{
			normalization.Field("id"),
			normalization.Field("pk"),
		},
		Shortcode: []normalization.Accessor{
			normalization.Field("code"),
			normalization.Field("shortcode"),
			normalization.Field("short_code"),
			normalization.Field("shortcode_media_code"),
		},
		Timestamp: []normalization.Accessor{
			normalization.Field("taken_at_ts"),
			normalization.Field("takenAtTs"),
			normalization.Field("timestamp"),
			normalization.Field("taken_at"),
			normalization.Field("takenAt"),
		},
		Views: []normalization.Accessor{
			normalization.Field("play_count"),
			normalization.Field("playCount"),
			normalization.Field("view_count"),
			normalization.Field("viewCount"),
			normalization.Field("video_view_count"),
		},
		Likes: []normalization.Accessor{
			normalization.Field("like_count"),
			normalization.Field("likeCount"),
		},
		Comments: []normalization.Accessor{
			normalization.Field("comment_count"),
			normalization.Field("commentCount"),
		},
		Caption: []normalization.Accessor{
			normalization.Field("caption", "text"),
			normalization.Field("caption_text"),
			normalization.Field("title"),
			normalization.Field("caption"),
		},
		Thumbnail: []normalization.Accessor{
			normalization.Field("thumbnail_url"),
			normalization.Field("thumbnail_src"),
			normalization.Field("thumbnail"),
			normalization.Field("thumb"),
			normalization.Field("image_url"),
			normalization.Field("images", 0, "url"),
			normalization.Field("image_versions2"),
			normalization.Field("carousel_media", 0, "image_versions2", "candidates", 0, "url"),
			normalization.Field("video_versions", 0, "url"),
		},
	}
}

// PostURL builds the public reel permalink from the shortcode.
func (g *Instagram) PostURL(_ string, post *domain.Post) string {
	if post == nil || post.Shortcode == "" {
		return ""
	}
	return fmt.Sprintf("https://www.instagram.com/reel/%s/", post.Shortcode)
}
