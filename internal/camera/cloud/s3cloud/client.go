// Package s3cloud implements the cloud contracts on top of an S3-compatible
// object store. Nodes are objects; the parent folder is the key prefix, the
// content fingerprint and GPS coordinates live in object metadata, and a
// configurable trash prefix marks soft-deleted objects.
package s3cloud

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
)

const (
	metaFingerprint         = "fingerprint"
	metaOriginalFingerprint = "fingerprint-original"
	metaLatitude            = "gps-lat"
	metaLongitude           = "gps-lng"
)

// api is the subset of the S3 client the adapter uses. *s3.Client satisfies
// it; tests substitute a fake.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Config holds the connection settings for the object store.
type Config struct {
	Region       string
	BaseEndpoint string
	Bucket       string
	AccessKey    string
	SecretKey    string
	TrashPrefix  string
}

// Client implements cloud.Searcher, cloud.Copier, cloud.Uploader,
// cloud.CoordinateService and cloud.FingerprintSetter.
type Client struct {
	api         api
	bucket      string
	trashPrefix string
}

// New builds a Client from Config, connecting with static credentials the
// same way the store is provisioned (e.g. MinIO root user).
func New(ctx context.Context, c Config) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return NewWithAPI(client, c.Bucket, c.TrashPrefix), nil
}

// NewWithAPI wires a Client over an existing S3 API implementation.
func NewWithAPI(a api, bucket, trashPrefix string) *Client {
	if trashPrefix == "" {
		trashPrefix = "trash/"
	}
	return &Client{api: a, bucket: bucket, trashPrefix: trashPrefix}
}

func (c *Client) nodeFromKey(key, fingerprint string) cloud.Node {
	return cloud.Node{
		ID:          cloud.NodeID(key),
		ParentID:    cloud.NodeID(parentOf(key)),
		Fingerprint: fingerprint,
		InTrash:     strings.HasPrefix(key, c.trashPrefix),
	}
}

func parentOf(key string) string {
	dir := path.Dir(key)
	if dir == "." {
		return ""
	}
	return dir + "/"
}

// SearchByFingerprint walks the bucket and returns every object whose
// fingerprint metadata (generated or original) matches. Object listings are
// paginated; metadata requires a head call per candidate object, so one
// lookup costs a full bucket listing plus one HeadObject per object. That
// is acceptable for the bucket sizes this worker targets; buckets beyond a
// few tens of thousands of objects would need a fingerprint-keyed index
// prefix maintained alongside the objects instead.
// TODO: maintain an index prefix (e.g. fp/<fingerprint> -> key) written on
// upload, and resolve lookups from it.
func (c *Client) SearchByFingerprint(ctx context.Context, fingerprint string) ([]cloud.Node, error) {
	var result []cloud.Node
	var token *string

	for {
		out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			head, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return nil, fmt.Errorf("head object %s: %w", key, err)
			}
			if head.Metadata[metaFingerprint] == fingerprint || head.Metadata[metaOriginalFingerprint] == fingerprint {
				result = append(result, c.nodeFromKey(key, fingerprint))
			}
		}

		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	return result, nil
}

// Copy performs a server-side copy of node into parent under name.
func (c *Client) Copy(ctx context.Context, node cloud.Node, parent cloud.NodeID, name string) (cloud.NodeID, error) {
	target := string(parent) + name

	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		CopySource: aws.String(c.bucket + "/" + string(node.ID)),
		Key:        aws.String(target),
	})
	if err != nil {
		return "", fmt.Errorf("copy object: %w", err)
	}

	return cloud.NodeID(target), nil
}

// NodeCoordinates reads GPS metadata from a node. Returns nil when the node
// carries no coordinates.
func (c *Client) NodeCoordinates(ctx context.Context, id cloud.NodeID) (*cloud.Coordinates, error) {
	head, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(string(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("head object %s: %w", id, err)
	}

	latStr, okLat := head.Metadata[metaLatitude]
	lngStr, okLng := head.Metadata[metaLongitude]
	if !okLat || !okLng {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", latStr, err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", lngStr, err)
	}

	return &cloud.Coordinates{Latitude: lat, Longitude: lng}, nil
}

// SetNodeCoordinates rewrites the node's metadata with the given GPS
// position via a self-copy with replaced metadata.
func (c *Client) SetNodeCoordinates(ctx context.Context, id cloud.NodeID, coords cloud.Coordinates) error {
	return c.replaceMetadata(ctx, id, map[string]string{
		metaLatitude:  strconv.FormatFloat(coords.Latitude, 'f', -1, 64),
		metaLongitude: strconv.FormatFloat(coords.Longitude, 'f', -1, 64),
	})
}

// SetOriginalFingerprint stores the original local fingerprint on the node.
func (c *Client) SetOriginalFingerprint(ctx context.Context, id cloud.NodeID, fingerprint string) error {
	return c.replaceMetadata(ctx, id, map[string]string{
		metaOriginalFingerprint: fingerprint,
	})
}

func (c *Client) replaceMetadata(ctx context.Context, id cloud.NodeID, updates map[string]string) error {
	head, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(string(id)),
	})
	if err != nil {
		return fmt.Errorf("head object %s: %w", id, err)
	}

	merged := make(map[string]string, len(head.Metadata)+len(updates))
	for k, v := range head.Metadata {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}

	_, err = c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(c.bucket),
		CopySource:        aws.String(c.bucket + "/" + string(id)),
		Key:               aws.String(string(id)),
		Metadata:          merged,
		MetadataDirective: s3types.MetadataDirectiveReplace,
	})
	if err != nil {
		return fmt.Errorf("replace metadata on %s: %w", id, err)
	}
	return nil
}
