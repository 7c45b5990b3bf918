package main

type sampleProduct struct {
	Name        string
	Description string
	Price       string
	ImageURL    string
	Filename    string
	Category    string
}

var sampleCatalog = []sampleProduct{
	{"Modern Gray Sofa", "Comfortable 3-seater modern sofa with premium fabric.", "347.99", "https://m.media-amazon.com/images/I/71Agxv80+fL._AC_SX679_.jpg", "gray-sofa.jpg", "Sofas"},
	{"L-Shaped Sectional", "Spacious L-shaped sectional perfect for large living rooms.", "799.99", "https://m.media-amazon.com/images/I/51QyiDR4ZML._AC_SX679_.jpg", "sectional-sofa.jpg", "Sofas"},
	{"Vintage Leather Sofa", "Classic 2-seater leather sofa with a vintage look.", "1629.99", "https://m.media-amazon.com/images/I/816LF8QgkOL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "leather-sofa.jpg", "Sofas"},
	{"Sleeper Sofa Bed", "Convertible sofa bed for small apartments.", "549.99", "https://m.media-amazon.com/images/I/915kp3br1TL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "sleeper-sofa.jpg", "Sofas"},
	{"Recliner Sofa", "Plush recliner sofa with adjustable backrests.", "699.99", "https://m.media-amazon.com/images/I/71Z53c4fDtL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "recliner-sofa.jpg", "Sofas"},
	{"Wooden Dining Chair", "Classic oak dining chair with padded seat.", "126.99", "https://m.media-amazon.com/images/I/61zygvkB+dL._AC_SX679_.jpg", "dining-chair.jpg", "Chairs"},
	{"Office Ergonomic Chair", "Adjustable mesh back office chair with lumbar support.", "36.98", "https://m.media-amazon.com/images/I/716tq9Y8WOL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "office-chair.jpg", "Chairs"},
	{"Navy Blue Accent Armchair", "Stylish armchair with tufted back and wooden legs.", "156.99", "https://m.media-amazon.com/images/I/71h0dBpnDRL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "accent-chair.jpg", "Chairs"},
	{"Rocking Chair", "Traditional wooden rocking chair for indoor use.", "89.99", "https://m.media-amazon.com/images/I/61xVp6jUvmL._AC_SX679_.jpg", "rocking-chair.jpg", "Chairs"},
	{"Lounge Chair", "Contemporary fabric lounge chair with curved design.", "68.29", "https://m.media-amazon.com/images/I/61HuraGElsL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "lounge-chair.jpg", "Chairs"},
	{"Wooden Coffee Table", "Rustic coffee table with solid pinewood top.", "61.99", "https://m.media-amazon.com/images/I/71EnvG1FKAL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "coffee-table.jpg", "Tables"},
	{"Dining Table Set", "6-seater dining table with matching chairs.", "169.99", "https://m.media-amazon.com/images/I/61AFXRTCuFL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "dining-table.jpg", "Tables"},
	{"Round Side Table", "Compact round table perfect for living rooms.", "35.59", "https://m.media-amazon.com/images/I/71nIh7HupvL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "side-table.jpg", "Tables"},
	{"Work Desk", "Spacious study desk with drawers and shelves.", "21.59", "https://m.media-amazon.com/images/I/71n6HWe0rmL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "work-desk.jpg", "Tables"},
	{"Wide Rectangular Glass Console Table", "Sleek console table with tempered glass top.", "170.78", "https://m.media-amazon.com/images/I/61E7A4RyfgL.__AC_SX300_SY300_QL70_FMwebp_.jpg", "console-table.jpg", "Tables"},
}
