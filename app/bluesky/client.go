package bluesky

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/skycomb/skycomb/app/publish"
)

const DefaultPDSHost = "https://bsky.social"

type Credentials struct {
	Identifier string
	Password   string
}

// Client wraps an authenticated xrpc session against a PDS host.
type Client struct {
	xrpc *xrpc.Client
}

var _ publish.PostClient = (*Client)(nil)

// ClientFromCredentials exchanges a handle/app-password pair for a session.
func ClientFromCredentials(ctx context.Context, host string, creds *Credentials) (*Client, error) {
	auth, err := atproto.ServerCreateSession(ctx, &xrpc.Client{Host: host}, &atproto.ServerCreateSession_Input{
		Identifier: creds.Identifier,
		Password:   creds.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	xrpcClient := &xrpc.Client{
		Host: host,
		Auth: &xrpc.AuthInfo{
			AccessJwt:  auth.AccessJwt,
			RefreshJwt: auth.RefreshJwt,
			Handle:     auth.Handle,
			Did:        auth.Did,
		},
		Client: http.DefaultClient,
	}

	return &Client{xrpc: xrpcClient}, nil
}

// PostText publishes a text-only post to the authenticated account.
func (c *Client) PostText(ctx context.Context, text string) error {
	return c.createPost(ctx, &appbsky.FeedPost{
		LexiconTypeID: "app.bsky.feed.post",
		Text:          text,
		CreatedAt:     FormatTime(time.Now().UTC()),
	})
}

// PostImages uploads each image as a blob and publishes a post embedding
// them, in order.
func (c *Client) PostImages(ctx context.Context, text string, images []publish.Image) error {
	embedded := make([]*appbsky.EmbedImages_Image, 0, len(images))
	for _, img := range images {
		blob, err := atproto.RepoUploadBlob(ctx, c.xrpc, bytes.NewReader(img.Data))
		if err != nil {
			return fmt.Errorf("failed to upload blob: %w", err)
		}

		embedded = append(embedded, &appbsky.EmbedImages_Image{
			Alt:   img.Alt,
			Image: blob.Blob,
		})
	}

	return c.createPost(ctx, &appbsky.FeedPost{
		LexiconTypeID: "app.bsky.feed.post",
		Text:          text,
		CreatedAt:     FormatTime(time.Now().UTC()),
		Embed: &appbsky.FeedPost_Embed{
			EmbedImages: &appbsky.EmbedImages{
				LexiconTypeID: "app.bsky.embed.images",
				Images:        embedded,
			},
		},
	})
}

func (c *Client) createPost(ctx context.Context, post *appbsky.FeedPost) error {
	_, err := atproto.RepoCreateRecord(ctx, c.xrpc, &atproto.RepoCreateRecord_Input{
		Collection: "app.bsky.feed.post",
		Repo:       c.xrpc.Auth.Did,
		Record: &lexutil.LexiconTypeDecoder{
			Val: post,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create post record: %w", err)
	}
	return nil
}

// FormatTime formats a time.Time into the format expected by AT Protocol.
func FormatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000Z")
}
