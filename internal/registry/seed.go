package registry

import "github.com/JakeFAU/awards-crawler/internal/award"

// Seed returns the curated records merged ahead of scraped data. The
// historical set is always included; the recent-years set is optional.
func Seed(includeRecent bool) []award.Record {
	out := make([]award.Record, 0, len(historical)+len(recent))
	out = append(out, historical...)
	if includeRecent {
		out = append(out, recent...)
	}
	return out
}

// winner builds a seed record where company and project coincide.
func winner(year int, category, name, agency string) award.Record {
	return award.Record{Year: year, Company: name, Agency: agency, Category: category, Project: name, Rank: 1}
}

var historical = []award.Record{
	winner(2018, "Site of the Year", "City of Perth", "Equilibrium"),
	winner(2018, "Agency of the Year", "Humaan", "Humaan"),
	winner(2018, "Government", "World War I: Love & Sorrow", "Museum Victoria"),
	winner(2018, "Health & Wellness", "Beyond Blue", "Squiz"),
	winner(2018, "Innovation", "Global Surf Sounds", "Royal Australian Navy"),

	winner(2017, "Site of the Year", "Hames Sharley", "Humaan"),
	winner(2017, "Agency of the Year", "Humaan", "Humaan"),

	winner(2016, "Site of the Year", "City of Sydney", "Deepend Group & City of Sydney"),

	winner(2015, "Site of the Year", "The Perth Mint", "Alyka"),

	{Year: 2014, Company: "Tourism Victoria", Agency: "Reactive", Category: "Site of the Year", Project: "Play Melbourne", Rank: 1},
	winner(2014, "Agency of the Year", "Bam Creative", "Bam Creative"),
	winner(2014, "Education", "University of Adelaide", "Bam Creative"),

	winner(2013, "Site of the Year", "Forestry Tasmania", "Reactive"),
	winner(2013, "Agency of the Year", "The Brand Agency", "The Brand Agency"),

	winner(2012, "Site of the Year", "Melbourne Cup Carnival", "Reactive"),
	winner(2012, "Agency of the Year", "Reactive", "Reactive"),

	winner(2011, "Site of the Year", "Airbnb", "Airbnb"),
	winner(2010, "Site of the Year", "ABC", "ABC Innovation"),
	winner(2009, "Site of the Year", "Sydney Opera House", "Deepend"),
}

const mcFarlane = "McFarlane Prize (Site of the Year)"

var recent = []award.Record{
	winner(2024, mcFarlane, "Healthy Eating Advisory Service", "Sod"),
	winner(2024, "Agency", "Humaan", "Humaan"),
	winner(2024, "Community & Culture", "AlignAbility", "Spicy Web"),
	winner(2024, "Construction & Manufacturing", "Bounce LED", "Redback Solutions"),
	winner(2024, "Education", "Happy Hearts Childcare", "Hopscotch Digital"),
	winner(2024, "Enterprise Business", "Hoyts Cinemas", "Chook Digital"),
	winner(2024, "Entertainment & Events", "Riverside Parramatta", "Jala Design"),
	winner(2024, "Financial Services", "RealRaise", "Woolly Mammoth"),
	winner(2024, "Government", "Healthy Eating Advisory Service", "Sod"),
	winner(2024, "Health & Wellness", "Healthy Eating Advisory Service", "Sod"),
	winner(2024, "Hospitality", "Matso's", "Start Digital"),
	winner(2024, "Innovation", "Towards Truth", "Custom D"),
	winner(2024, "Not for Profit", "Gifts from the Heart", "Berry Street"),
	winner(2024, "Sport & Recreation", "Australian Sports Foundation", "Australian Sports Foundation and Deloitte Digital"),
	winner(2024, "Start-up", "Well Excel", "Greenhat"),
	winner(2024, "Travel & Tourism", "Visit Brisbane", "Aceik"),
	winner(2024, "Technology (IT / Software)", "Liquidity", "Juicebox"),
	winner(2024, "Mobile App", "The Chadstone App", "Inlight"),
	winner(2024, "Web App", "Global Slavery Index", "Anthologie"),
	winner(2024, "Drupal", "Australian Federal Police", "Doghouse Agency"),
	winner(2024, "Headless", "Melbourne Airport", "Luminary"),
	winner(2024, "Shopify", "Thankyou", "Convert Digital"),
	winner(2024, "WordPress", "Healthy Eating Advisory Service", "Sod"),
	winner(2024, "Small Business", "The District Docklands", "Duck Soup Creative"),
	winner(2024, "Medium Business", "Bounce LED", "Redback Solutions"),
	winner(2024, "Large Business", "New Generation Homes", "Juicebox"),
	winner(2024, "SEO Effectiveness", "Hoyts Cinemas", "Chook Digital"),
	winner(2024, "Accessibility Award", "Luma", "Dux Digital"),
	winner(2024, "Content Award", "Australian Federal Police", "Doghouse Agency"),
	winner(2024, "Design Award", "Humaan", "Humaan"),
	winner(2024, "Development Award", "Melbourne Airport", "Luminary"),
	winner(2024, "User Experience Award", "Sydney Opera House", "Sitback Solutions"),

	winner(2023, "Site of the Year", "Cooee", "Luminary"),
	winner(2023, "Agency", "Chromatix", "Chromatix"),
	winner(2023, "Community & Culture", "Headspace", "Portable"),
	winner(2023, "Construction & Manufacturing", "Airmaster", "Zimple Digital"),
	winner(2023, "Education", "Ngarrngga", "Honest Fox"),
	winner(2023, "Winner", "UNICEF Australia", "Luminary"),
	winner(2023, "Construction & Manufacturing", "Harwyn", "Rock Agency"),
	winner(2023, "Education", "Haileybury Pangea", "Digistorm"),
	winner(2023, "Enterprise Business", "PayTo", "Humaan"),
	{Year: 2023, Company: "Flagrant Artist Management", Agency: "Straight Out Digital", Category: "Entertainment & Events", Project: "Flagrant Artist Management (FAM)", Rank: 1},
	winner(2023, "Government", "Rottnest Island", "equ"),
	winner(2023, "Health & Wellness", "VegKit", "Portable"),
	winner(2023, "Hospitality", "Floridia Cheese", "About Today"),
	{Year: 2023, Company: "Justice Beyond Borders", Agency: "Redback Solutions", Category: "Innovation", Project: "Justice Beyond Borders – Clooney Foundation for Justice", Rank: 1},
	winner(2023, "Not for Profit", "Rooftop Movies", "Strange Animals"),

	winner(2022, "Site of the Year", "Rare Bird", "Humaan"),
	winner(2022, "Agency", "Humaan", "Humaan"),
	winner(2022, "Community & Culture", "National Native Title Tribunal", "Doghouse Agency"),

	winner(2021, "eCommerce", "Vandenberg Wines", "Rock Agency"),
	winner(2021, "Education", "RMIT Next", "Rock Agency"),

	{Year: 2024, Company: "Cooee", Agency: "Luminary", Category: mcFarlane, Project: "Cooee", Rank: 2},
	{Year: 2024, Company: "National Gallery of Victoria", Agency: "Deepend", Category: mcFarlane, Project: "National Gallery of Victoria", Rank: 3},
}
