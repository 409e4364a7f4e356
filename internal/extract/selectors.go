package extract

// Selectors for the storefront's product page. The page is rendered by a
// single-page app, so most of these nodes are re-created in place whenever a
// variant is selected.
const (
	selCarouselImage      = ".athenaProductImageCarousel_image"
	selCarouselRightArrow = ".athenaProductImageCarousel_rightArrow"

	selVariationLabel    = ".athenaProductVariations_dropdownLabel"
	selVariationDropdown = ".athenaProductVariations_dropdown"
	selVariationBox      = ".athenaProductVariations_box"
	selBoxSelectedMarker = ".srf-hide"

	selProductName     = ".productName_title"
	selProductRating   = ".productReviewStarsPresentational"
	selNumberOfReviews = ".productReviewStars_numberOfReviews"
	selPrice           = ".productPrice_price"
	selFromPrice       = ".productPrice_fromPrice"
	selSoldOut         = ".productAddToBasket-soldOut"
	selBrandLogo       = ".productBrandLogo_image"

	selDescriptionControl = ".productDescription_accordionControl"

	// The swatch tied to a dropdown option, keyed by the option value.
	selSwatchFmt = "span[data-value-id='%s']"

	dropdownPlaceholder = "please choose..."
	outOfStockSuffix    = "- Out of stock"
)
