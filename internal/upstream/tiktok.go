package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/normalization"
)

// DefaultTikTokHost is the proxy host fronting the TikTok feed API.
const DefaultTikTokHost = "tiktok-api23.p.rapidapi.com"

// tiktokPageSize is the per-request chunk size.
const tiktokPageSize = 30

// TikTok is the Platform adapter for the short-video feed API.
type TikTok struct {
	client *Client
}

// NewTikTok creates a TikTok adapter on top of the shared client.
func NewTikTok(client *Client) *TikTok {
	return &TikTok{client: client}
}

var _ Platform = (*TikTok)(nil)

// Name returns domain.PlatformTikTok.
func (t *TikTok) Name() domain.Platform {
	return domain.PlatformTikTok
}

// Identifier aliases, in priority order. The user object itself moves
// around across proxy response revisions, so the chains enumerate every
// known nesting.
var (
	tiktokSecUIDChain = []normalization.Accessor{
		normalization.Field("userInfo", "user", "secUid"),
		normalization.Field("data", "userInfo", "user", "secUid"),
		normalization.Field("data", "user", "secUid"),
		normalization.Field("user", "secUid"),
		normalization.Field("userInfo", "user", "sec_uid"),
		normalization.Field("data", "user", "sec_uid"),
		normalization.Field("data", "secUid"),
		normalization.Field("secUid"),
	}
	tiktokUserIDChain = []normalization.Accessor{
		normalization.Field("userInfo", "user", "id"),
		normalization.Field("data", "userInfo", "user", "id"),
		normalization.Field("data", "user", "id"),
		normalization.Field("user", "id"),
		normalization.Field("userInfo", "user", "userId"),
		normalization.Field("userInfo", "user", "uid"),
		normalization.Field("data", "userId"),
		normalization.Field("userId"),
	}
)

// ResolveIdentifier resolves a handle to its (secUid, userId) pair.
func (t *TikTok) ResolveIdentifier(ctx context.Context, handle string) (*domain.ProfileIdentifier, error) {
	lookup := fmt.Sprintf("https://%s/api/user/info?uniqueId=%s", t.client.Host(), url.QueryEscape(handle))

	var body map[string]any
	if err := t.client.GetJSON(ctx, lookup, "user/info", &body); err != nil {
		return nil, err
	}

	secUID, ok := probeString(body, tiktokSecUIDChain)
	if !ok {
		return nil, ErrNoIdentifier
	}
	userID, _ := probeString(body, tiktokUserIDChain)

	return &domain.ProfileIdentifier{Primary: secUID, Secondary: userID}, nil
}

// FetchPage requests one chunk of posts at the given cursor.
func (t *TikTok) FetchPage(ctx context.Context, id *domain.ProfileIdentifier, cursor string) (*Page, error) {
	if cursor == "" {
		cursor = "0"
	}
	q := url.Values{}
	q.Set("secUid", id.Primary)
	q.Set("count", strconv.Itoa(tiktokPageSize))
	q.Set("cursor", cursor)
	if id.Secondary != "" {
		// The proxy has shipped both spellings; send both.
		q.Set("userId", id.Secondary)
		q.Set("user_id", id.Secondary)
	}
	pageURL := fmt.Sprintf("https://%s/api/user/posts?%s", t.client.Host(), q.Encode())

	var body map[string]any
	if err := t.client.GetJSON(ctx, pageURL, "user/posts", &body); err != nil {
		return nil, err
	}

	data := body
	if d, ok := body["data"].(map[string]any); ok {
		data = d
	}

	records := firstRecordList(data, "itemList", "items", "aweme_list", "videos", "postList")
	hasMore := boolField(data, "hasMore") || boolField(data, "has_more")
	next, _ := probeString(data, []normalization.Accessor{
		normalization.Field("cursor"),
		normalization.Field("nextCursor"),
		normalization.Field("maxCursor"),
	})

	page := &Page{Records: records}
	if hasMore && next != "" {
		page.HasMore = true
		page.NextCursor = next
	}
	return page, nil
}

// Chains returns the TikTok post field chains.
func (t *TikTok) Chains() normalization.Chains {
	return normalization.Chains{
		ID: []normalization.Accessor{
			normalization.Field("id"),
			normalization.Field("aweme_id"),
			normalization.Field("awemeId"),
			normalization.Field("aweme", "aweme_id"),
			normalization.Field("video", "id"),
			normalization.Field("group_id"),
		},
		Timestamp: []normalization.Accessor{
			normalization.Field("createTime"),
			normalization.Field("create_time"),
			normalization.Field("create_time_utc"),
			normalization.Field("timestamp"),
			normalization.Field("time"),
		},
		Views: []normalization.Accessor{
			normalization.Field("stats", "playCount"),
			normalization.Field("play_count"),
			normalization.Field("playCount"),
			normalization.Field("stats", "play_count"),
			normalization.Field("statistics", "playCount"),
			normalization.Field("statistics", "play_count"),
		},
		Likes: []normalization.Accessor{
			normalization.Field("stats", "diggCount"),
			normalization.Field("digg_count"),
			normalization.Field("like_count"),
			normalization.Field("stats", "digg_count"),
			normalization.Field("statistics", "diggCount"),
			normalization.Field("statistics", "digg_count"),
		},
		Comments: []normalization.Accessor{
			normalization.Field("stats", "commentCount"),
			normalization.Field("comment_count"),
			normalization.Field("stats", "comment_count"),
			normalization.Field("statistics", "commentCount"),
			normalization.Field("statistics", "comment_count"),
		},
		Caption: []normalization.Accessor{
			normalization.Field("desc"),
			normalization.Field("title"),
			normalization.Field("text"),
			normalization.Field("caption"),
			normalization.Field("shareMeta", "desc"),
		},
		Thumbnail: []normalization.Accessor{
			normalization.Field("cover"),
			normalization.Field("originCover"),
			normalization.Field("dynamicCover"),
			normalization.Field("thumbnail"),
			normalization.Field("thumbnail_url"),
			normalization.Field("coverUrl"),
			normalization.Field("cover_url"),
			normalization.Field("video", "cover"),
			normalization.Field("video", "coverUrl"),
			normalization.Field("video", "cover_url"),
			normalization.Field("video", "originCover"),
			normalization.Field("video", "dynamicCover"),
			normalization.Field("video", "poster"),
			normalization.Field("video", "shareCover"),
			normalization.Field("aweme", "video", "cover"),
			normalization.Field("aweme", "video", "originCover"),
			normalization.Field("aweme", "video", "dynamicCover"),
		},
	}
}

// PostURL builds the public video permalink.
func (t *TikTok) PostURL(handle string, post *domain.Post) string {
	if handle == "" || post == nil || post.ID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", url.PathEscape(handle), post.ID)
}
