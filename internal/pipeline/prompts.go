package pipeline

// ProductImagePrompts are the fixed hero-image style slots, one prompt per
// generated product image.
var ProductImagePrompts = []string{
	"Place this product on a luxurious white marble surface with subtle veining, soft golden rim lighting from the side, a gentle gradient backdrop from cream to pale gray, small decorative green leaf accent in the corner, professional e-commerce hero image, ultra high quality, 1000x1000",
	"Display this product at a 45-degree angle on a rich dark wood table, surrounded by soft bokeh warm string lights in the background, a small potted succulent nearby, moody ambient studio lighting with golden hour warmth, premium lifestyle e-commerce photography",
	"Show this product on a sleek glossy black acrylic surface with mirror reflection, dramatic backlit rim lighting in cool blue and purple tones, clean dark gradient background, futuristic high-end product photography, sharp details",
	"Place this product on a natural linen fabric textured surface, surrounded by dried flowers, eucalyptus leaves and a small candle, warm earthy color palette with terracotta and sage green accents, soft diffused natural window light, organic aesthetic product photography",
	"Present this product floating on a dreamy pastel gradient background blending from soft pink to lavender to sky blue, subtle geometric shadow patterns, light sparkle particles, airy and premium feel, modern e-commerce advertising style, high resolution",
}

// EffectImagePrompts are the lifestyle-scene slots.
var EffectImagePrompts = []string{
	"Place this product in a stunning modern Scandinavian living room scene, light oak furniture, large window with natural sunlight streaming in, a cozy throw blanket, coffee cup and open magazine on the side table, warm inviting atmosphere, editorial lifestyle photography",
	"Place this product in a sleek professional photography studio setup, dramatic three-point lighting with colored gels (warm amber and cool blue), product elevated on a rotating display pedestal, smoke/haze effect in the background, high-end commercial advertising campaign quality",
}

// GridScenePrompts is the prompt bank for grid-composite cells. Cells cycle
// through the bank when the grid has more cells than prompts.
var GridScenePrompts = []string{
	"This product being used by a person at home in a cozy living room, lifestyle photography, warm lighting",
	"This product displayed on a modern desk workspace with a laptop and coffee, clean aesthetic",
	"Close-up detail shot of this product showing texture and craftsmanship, macro photography style",
	"This product being held in hands, showing scale and real-world use, natural daylight",
	"This product in an outdoor setting, park or street scene, casual lifestyle photography",
	"This product arranged in a flat-lay composition with complementary accessories, top-down view",
	"This product in a gift-giving scenario, beautiful wrapping, festive atmosphere",
	"This product shown in packaging or unboxing moment, clean background, excitement feeling",
	"This product being used in its primary use case scenario, action shot, dynamic angle",
	"This product on a minimalist shelf display with decorative plants, interior design aesthetic",
	"Multiple angles of this product arranged artistically, catalog style photography",
	"This product in a seasonal themed setting, cozy atmosphere with warm tones",
	"This product being compared with everyday objects for size reference, informative composition",
	"This product in a luxury retail store display environment, premium branding feel",
	"This product in a travel or commute scenario, portable and convenient use case",
	"This product in a festive celebration setting with people enjoying it, joyful mood",
}
