// Package generation turns prompts into stored, alpha-matted image assets.
//
// A generation runs provider call, decode, canvas fit, chroma-key
// extraction, PNG encode, blob write and version record, in that order.
// Nothing is written before the provider output decodes, and a blob whose
// version cannot be recorded is removed again.
package generation

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/youruser/therapydeck/internal/cards"
	imagepkg "github.com/youruser/therapydeck/internal/image"
	"github.com/youruser/therapydeck/internal/storage"
)

// ImageGenerator produces raw image bytes for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
	ImageModel() string
}

// BlobStore stores PNG bytes under opaque ids.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Delete(ctx context.Context, id string) error
}

// AssetRecorder records the current version of an asset key and reports
// the storage id it replaced.
type AssetRecorder interface {
	ReplaceAsset(ctx context.Context, v *storage.AssetVersion) (string, error)
}

// Config tunes the orchestrator.
type Config struct {
	// IconSize is the square canvas icons are fitted to.
	IconSize int
	// Tolerance is the chroma-key tolerance.
	Tolerance int
	// Concurrency caps parallel generations in a batch.
	Concurrency int
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{IconSize: 512, Tolerance: imagepkg.DefaultTolerance, Concurrency: 3}
}

// Orchestrator drives asset generation.
type Orchestrator struct {
	images  ImageGenerator
	blobs   BlobStore
	records AssetRecorder
	config  Config
	logger  *slog.Logger
}

// NewOrchestrator wires an orchestrator. Zero config fields take defaults.
func NewOrchestrator(images ImageGenerator, blobs BlobStore, records AssetRecorder, config Config, logger *slog.Logger) *Orchestrator {
	def := DefaultConfig()
	if config.IconSize <= 0 {
		config.IconSize = def.IconSize
	}
	if config.Tolerance <= 0 {
		config.Tolerance = def.Tolerance
	}
	if config.Concurrency <= 0 {
		config.Concurrency = def.Concurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{images: images, blobs: blobs, records: records, config: config, logger: logger}
}

// FrameRequest asks for a decorative frame in a style.
type FrameRequest struct {
	// ResourceID owns the frame; frames of different resources never replace each other.
	ResourceID string    `json:"resourceId"`
	FrameType  FrameType `json:"frameType"`
	Style      Style     `json:"style"`
}

// FrameResult reports a generated frame.
type FrameResult struct {
	Success   bool      `json:"success"`
	StorageID string    `json:"storageId"`
	FrameType FrameType `json:"frameType"`
}

// FrameAssetKey is the asset key frames of type ft are recorded under.
func FrameAssetKey(ft FrameType) string { return "frame:" + string(ft) }

// GenerateFrame generates, mattes and stores a frame. Errors are
// *GenerationError.
func (o *Orchestrator) GenerateFrame(ctx context.Context, req FrameRequest) (*FrameResult, error) {
	spec, err := LookupFrame(req.FrameType)
	if err != nil {
		return nil, &GenerationError{Kind: KindGeneric, Message: err.Error(), Err: err}
	}
	prompt, err := BuildFramePrompt(req.Style, req.FrameType)
	if err != nil {
		return nil, &GenerationError{Kind: KindGeneric, Message: err.Error(), Err: err}
	}

	id, err := o.run(ctx, req.ResourceID, FrameAssetKey(req.FrameType), prompt, req.Style.ID,
		o.matte(spec.Width, spec.Height))
	if err != nil {
		return nil, err
	}
	return &FrameResult{Success: true, StorageID: id, FrameType: req.FrameType}, nil
}

// AssetJob is one card game asset to generate.
type AssetJob struct {
	Key    string    `json:"key"`
	Kind   AssetKind `json:"kind"`
	Prompt string    `json:"prompt"`
}

// Jobs lists the assets of content: backgrounds, then icons, then the card back.
func Jobs(content *cards.Content) []AssetJob {
	var jobs []AssetJob
	for _, bg := range content.Backgrounds {
		jobs = append(jobs, AssetJob{Key: bg.ImageAssetKey, Kind: AssetBackground, Prompt: bg.ImagePrompt})
	}
	for _, icon := range content.Icons {
		jobs = append(jobs, AssetJob{Key: icon.ImageAssetKey, Kind: AssetIcon, Prompt: icon.ImagePrompt})
	}
	if content.CardBack != nil {
		jobs = append(jobs, AssetJob{Key: content.CardBack.ImageAssetKey, Kind: AssetCardBack, Prompt: content.CardBack.ImagePrompt})
	}
	return jobs
}

// GenerateCardAsset generates one card game asset. Icons are fitted to a
// square canvas and keyed; backgrounds and the card back are stored as
// generated. Errors are *GenerationError.
func (o *Orchestrator) GenerateCardAsset(ctx context.Context, resourceID string, job AssetJob, style Style) (string, error) {
	var post func(image.Image) image.Image
	if job.Kind == AssetIcon {
		post = o.matte(o.config.IconSize, o.config.IconSize)
	}
	return o.run(ctx, resourceID, job.Key, BuildAssetPrompt(job.Kind, job.Prompt, style), style.ID, post)
}

// matte fits to a w x h canvas and keys out the green.
func (o *Orchestrator) matte(w, h int) func(image.Image) image.Image {
	return func(img image.Image) image.Image {
		return imagepkg.ExtractChromaKey(imagepkg.FitToCanvas(img, w, h), o.config.Tolerance)
	}
}

func (o *Orchestrator) run(ctx context.Context, resourceID, key, prompt, styleID string, post func(image.Image) image.Image) (string, error) {
	log := o.logger.With("resource", resourceID, "asset", key)

	raw, err := o.images.GenerateImage(ctx, prompt)
	if err != nil {
		ge := Classify(err)
		log.Warn("image generation failed", "kind", ge.Kind, "error", err)
		return "", ge
	}
	img, err := imagepkg.Decode(raw)
	if err != nil {
		return "", Classify(fmt.Errorf("decode generated image: %w", err))
	}
	if post != nil {
		img = post(img)
	}
	data, err := imagepkg.EncodePNG(img)
	if err != nil {
		return "", Classify(err)
	}

	id, err := o.blobs.Put(ctx, data)
	if err != nil {
		return "", Classify(fmt.Errorf("store image: %w", err))
	}

	previous, err := o.records.ReplaceAsset(ctx, &storage.AssetVersion{
		ResourceID: resourceID,
		AssetKey:   key,
		StorageID:  id,
		Model:      o.images.ImageModel(),
		Prompt:     prompt,
		StyleID:    styleID,
	})
	if err != nil {
		if derr := o.blobs.Delete(ctx, id); derr != nil {
			log.Warn("failed to remove unrecorded blob", "storage", id, "error", derr)
		}
		return "", Classify(fmt.Errorf("record asset: %w", err))
	}

	if previous != "" {
		if err := o.blobs.Delete(ctx, previous); err != nil {
			log.Warn("failed to delete replaced blob", "storage", previous, "error", err)
		}
	}
	log.Info("asset generated", "storage", id)
	return id, nil
}
