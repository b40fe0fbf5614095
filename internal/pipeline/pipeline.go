package pipeline

import (
	"context"
	"fmt"

	"topm/internal/domain"
	"topm/internal/imaging"
	"topm/internal/infra"
)

// ContentClient is the generative capability the pipeline drives. GenerateImage
// soft-fails with an empty string; ExtractProductInfo errors on transport
// failure so the pipeline can substitute the deterministic fallback.
type ContentClient interface {
	GenerateImage(ctx context.Context, sources []string, prompt string) string
	ExtractProductInfo(ctx context.Context, sources []string) (domain.ProductInfo, error)
}

// InfoFallback supplies deterministic synthetic metadata when the external
// capability cannot.
type InfoFallback interface {
	ProductInfo() domain.ProductInfo
}

// ProgressFunc receives one call per pipeline stage with a strictly
// increasing fraction in (0, 1] and a human-readable stage message.
type ProgressFunc func(fraction float64, message string)

// Config fixes the shape of one pipeline variant. The richest variant is
// 5 product images, 2 effect images and a 3x3 grid: 9 stages in total.
type Config struct {
	ProductSlots int
	EffectSlots  int
	GridSize     int // 0 disables the grid composite stage
}

// DefaultConfig is the richest pipeline variant.
func DefaultConfig() Config {
	return Config{ProductSlots: 5, EffectSlots: 2, GridSize: 3}
}

// Pipeline runs the fixed multi-stage generation sequence: product images,
// effect images, grid composite, then metadata. Every stage prefers the
// external capability and falls back to local synthesis, so a started run
// always returns a complete bundle.
type Pipeline struct {
	client   ContentClient
	renderer *imaging.Renderer
	fallback InfoFallback
	logger   infra.Logger
	cfg      Config
}

// New constructs a Pipeline. Zero-valued config fields take their defaults.
func New(client ContentClient, renderer *imaging.Renderer, fallback InfoFallback, logger infra.Logger, cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.ProductSlots <= 0 {
		cfg.ProductSlots = def.ProductSlots
	}
	if cfg.EffectSlots <= 0 {
		cfg.EffectSlots = def.EffectSlots
	}
	if cfg.GridSize < 0 {
		cfg.GridSize = 0
	}
	return &Pipeline{
		client:   client,
		renderer: renderer,
		fallback: fallback,
		logger:   logger,
		cfg:      cfg,
	}
}

// TotalStages is the fixed stage count for this pipeline configuration.
func (p *Pipeline) TotalStages() int {
	stages := p.cfg.ProductSlots + p.cfg.EffectSlots + 1 // + metadata
	if p.cfg.GridSize > 0 {
		stages++
	}
	return stages
}

// Run executes the pipeline over the given source images. onProgress fires
// once per stage; the final call reports fraction 1.0. Only an empty source
// set is rejected — individual stage failures are absorbed by fallbacks.
func (p *Pipeline) Run(ctx context.Context, sources []string, onProgress ProgressFunc) (*domain.GenerationResult, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("pipeline: %w", domain.ErrNoSourceImages)
	}

	total := p.TotalStages()
	step := 0
	report := func(message string) {
		step++
		if onProgress != nil {
			onProgress(float64(step)/float64(total), message)
		}
	}

	result := &domain.GenerationResult{
		ProductImages: make([]string, 0, p.cfg.ProductSlots),
		EffectImages:  make([]string, 0, p.cfg.EffectSlots),
		GridImages:    []string{},
	}

	for i := 0; i < p.cfg.ProductSlots; i++ {
		report(fmt.Sprintf("Generando imagen de producto %d/%d...", i+1, p.cfg.ProductSlots))
		result.ProductImages = append(result.ProductImages, p.productImage(ctx, sources, i))
	}

	for i := 0; i < p.cfg.EffectSlots; i++ {
		report(fmt.Sprintf("Generando imagen de ambiente %d/%d...", i+1, p.cfg.EffectSlots))
		result.EffectImages = append(result.EffectImages, p.effectImage(ctx, sources, i))
	}

	if p.cfg.GridSize > 0 {
		report(fmt.Sprintf("Componiendo cuadrícula de escenas %d×%d...", p.cfg.GridSize, p.cfg.GridSize))
		grid, err := p.gridImage(ctx, sources)
		if err != nil {
			p.logger.Error().Err(err).Msg("pipeline: grid composite failed")
		} else {
			result.GridImages = append(result.GridImages, grid)
		}
	}

	report("Analizando información del producto...")
	info := p.productInfo(ctx, sources)
	result.Title = info.Title
	result.Description = info.Description
	result.Price = info.Price
	result.Category = info.Category
	result.Attributes = info.Attributes

	return result, nil
}

func (p *Pipeline) productImage(ctx context.Context, sources []string, slot int) string {
	if img := p.client.GenerateImage(ctx, sources, ProductImagePrompts[slot%len(ProductImagePrompts)]); img != "" {
		return img
	}
	style := imaging.ProductStyles[slot%len(imaging.ProductStyles)]
	img, err := p.renderer.ProductImage(sources, style, slot)
	if err != nil {
		p.logger.Error().Err(err).Int("slot", slot).Msg("pipeline: product image synthesis failed")
		return p.renderer.Blank(style)
	}
	return img
}

func (p *Pipeline) effectImage(ctx context.Context, sources []string, slot int) string {
	if img := p.client.GenerateImage(ctx, sources, EffectImagePrompts[slot%len(EffectImagePrompts)]); img != "" {
		return img
	}
	img, err := p.renderer.EffectImage(sources, slot)
	if err != nil {
		p.logger.Error().Err(err).Int("slot", slot).Msg("pipeline: effect image synthesis failed")
		return p.renderer.Blank(imaging.ProductStyles[slot%len(imaging.ProductStyles)])
	}
	return img
}

// gridImage generates one image per cell (external first, local styles as
// fallback) then tiles them. Undecodable cells become placeholders inside
// ComposeGrid.
func (p *Pipeline) gridImage(ctx context.Context, sources []string) (string, error) {
	cellCount := p.cfg.GridSize * p.cfg.GridSize
	cells := make([]string, 0, cellCount)
	for i := 0; i < cellCount; i++ {
		prompt := GridScenePrompts[i%len(GridScenePrompts)]
		if img := p.client.GenerateImage(ctx, sources, prompt); img != "" {
			cells = append(cells, img)
			continue
		}
		style := imaging.ProductStyles[i%len(imaging.ProductStyles)]
		img, err := p.renderer.ProductImage(sources, style, i)
		if err != nil {
			p.logger.Warn().Err(err).Int("cell", i).Msg("pipeline: grid cell synthesis failed")
			img = "" // placeholder cell
		}
		cells = append(cells, img)
	}
	return p.renderer.ComposeGrid(cells, p.cfg.GridSize)
}

func (p *Pipeline) productInfo(ctx context.Context, sources []string) domain.ProductInfo {
	info, err := p.client.ExtractProductInfo(ctx, sources)
	if err != nil {
		p.logger.Warn().Err(err).Msg("pipeline: metadata extraction failed, using synthetic fallback")
		return p.fallback.ProductInfo()
	}
	return info
}
