package validate

import "regexp"

// markupTerms are tokens that only appear in names scraped from markup,
// scripts or page chrome.
var markupTerms = []string{
	"div", "span", "class", "href", "src", "img", "html", "body", "head", "script",
	"style", "css", "px", "em", "rem", "nbsp", "amp", "quot", "javascript", "function",
	"var", "const", "let", "null", "undefined", "true", "false", "return", "onclick", "onload",
	"id", "tbody", "thead", "tr", "td", "th", "ul", "li", "ol", "nav", "footer",
	"header", "section", "article", "aside", "iframe", "svg", "path", "rect", "viewbox", "xmlns",
	"wp", "wordpress", "elementor", "jquery", "bootstrap", "widget", "container", "wrapper", "row", "col",
	"btn", "button", "input", "form", "label", "select", "option", "textarea", "meta", "charset",
	"utf", "http", "https", "www", "url", "png", "jpg", "jpeg", "gif", "webp",
	"json", "xml", "api", "cdn", "cookie", "cookies", "gdpr", "analytics", "gtag", "pixel",
	"menu", "dropdown", "toggle", "slider", "carousel", "modal", "popup", "icon", "logo", "thumbnail",
}

// serviceTerms are business, service and page-copy words that show up in
// capitalised phrases mistaken for names.
var serviceTerms = []string{
	"services", "service", "solutions", "consulting", "consultancy", "ltd", "limited", "plc", "llp", "group",
	"company", "holdings", "ventures", "associates", "enterprises", "industries", "trading", "international", "uk", "partners",
	"team", "contact", "about", "us", "home", "privacy", "policy", "terms", "conditions", "news",
	"blog", "careers", "jobs", "welcome", "read", "more", "click", "here", "get", "touch",
	"quote", "free", "call", "email", "phone", "office", "offices", "management", "construction", "electrical",
	"electricians", "plumbing", "plumbers", "heating", "roofing", "cleaning", "accountants", "accountancy", "solicitors", "estate",
	"agents", "lettings", "property", "properties", "insurance", "marketing", "design", "digital", "software", "support",
	"customer", "customers", "sales", "enquiries", "enquiry", "booking", "book", "now", "online", "shop",
	"store", "products", "gallery", "testimonials", "reviews", "faq", "faqs", "dental", "clinic", "surgery",
	"garage", "motors", "repairs", "maintenance", "installation", "installations", "landscaping", "gardening", "removals", "storage",
	"logistics", "transport", "haulage", "catering", "bakery", "cafe", "restaurant", "hotel", "salon", "beauty",
	"fitness", "gym", "training", "academy", "school", "nursery", "pharmacy", "veterinary", "vets", "recruitment",
	"legal", "financial", "mortgage", "mortgages", "wealth", "investment", "investments", "tax", "payroll", "bookkeeping",
	"audit", "web", "hosting", "printing", "signs", "security", "safety", "pest", "control", "windows",
	"kitchens", "bathrooms", "flooring", "carpets", "furniture", "joinery", "plastering", "decorating", "scaffolding", "demolition",
	"drainage", "locksmith", "locksmiths", "glazing", "solar", "energy", "environmental", "waste", "recycling", "engineering",
	"manufacturing", "supplies", "supply", "wholesale", "retail", "studio", "studios", "agency", "media", "productions",
	"events", "hire", "rental", "rentals", "care", "healthcare", "homecare", "wellbeing", "therapy", "physiotherapy",
	"our", "your", "the", "and", "of", "for", "with", "all", "rights", "reserved",
	"copyright", "sitemap", "login", "register", "account", "cart", "checkout", "search", "view", "learn",
	"latest", "projects", "portfolio", "case", "studies", "resources", "downloads", "brochure", "mission", "vision",
	"values", "history", "story", "approach", "process", "pricing", "price", "prices", "offer", "offers",
	"opening", "hours", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday", "street",
	"road", "lane", "avenue", "park", "industrial", "estate", "unit", "suite", "floor", "building",
	"director", "directors", "manager", "managers", "ceo", "cfo", "coo", "cto", "md", "chairman",
	"chairwoman", "chairperson", "founder", "cofounder", "owner", "proprietor", "secretary", "officer", "executive", "president",
	"supervisor", "coordinator", "administrator", "consultant", "specialist", "assistant", "receptionist", "staff", "employees", "apprentice",
}

// placeNames are UK towns, cities, counties, regions and areas that are
// commonly scraped alongside names.
var placeNames = []string{
	"london", "manchester", "birmingham", "leeds", "glasgow", "edinburgh", "liverpool", "bristol", "cardiff", "belfast",
	"sheffield", "newcastle", "nottingham", "leicester", "coventry", "bradford", "hull", "stoke", "wolverhampton", "plymouth",
	"southampton", "portsmouth", "reading", "derby", "swansea", "aberdeen", "dundee", "york", "exeter", "norwich",
	"cambridge", "oxford", "brighton", "bournemouth", "swindon", "milton keynes", "northampton", "luton", "peterborough", "ipswich",
	"colchester", "chelmsford", "southend", "basildon", "maidstone", "canterbury", "dover", "guildford", "woking", "crawley",
	"slough", "watford", "st albans", "stevenage", "bedford", "gloucester", "cheltenham", "bath", "worcester", "hereford",
	"shrewsbury", "telford", "chester", "warrington", "wigan", "bolton", "bury", "rochdale", "oldham", "stockport",
	"preston", "blackpool", "blackburn", "burnley", "lancaster", "carlisle", "sunderland", "durham", "middlesbrough", "darlington",
	"harrogate", "wakefield", "huddersfield", "halifax", "doncaster", "rotherham", "barnsley", "lincoln", "grimsby", "scunthorpe",
	"mansfield", "chesterfield", "salisbury", "winchester", "basingstoke", "poole", "weymouth", "taunton", "truro", "torquay",
	"inverness", "stirling", "perth", "paisley", "newport", "wrexham", "bangor", "londonderry", "derry", "lisburn",
	"kent", "essex", "surrey", "sussex", "devon", "cornwall", "dorset", "somerset", "norfolk", "suffolk",
	"yorkshire", "lancashire", "cheshire", "derbyshire", "hampshire", "berkshire", "wiltshire", "oxfordshire", "gloucestershire", "hertfordshire",
	"buckinghamshire", "bedfordshire", "cambridgeshire", "northamptonshire", "leicestershire", "nottinghamshire", "lincolnshire", "staffordshire", "shropshire", "warwickshire",
	"worcestershire", "herefordshire", "cumbria", "northumberland", "merseyside", "tyne and wear", "west midlands", "east midlands", "greater london", "greater manchester",
	"home counties", "east anglia", "south east", "south west", "north east", "north west", "midlands", "wales", "scotland", "england",
	"northern ireland", "united kingdom", "great britain", "britain", "highlands", "cotswolds", "lake district", "peak district", "fife", "lothian",
	"mayfair", "soho", "camden", "islington", "hackney", "croydon", "bromley", "ealing", "hounslow", "kingston",
	"richmond", "wimbledon", "greenwich", "lewisham", "southwark", "lambeth", "wandsworth", "chelsea", "kensington", "westminster",
}

// placeSuffixRe flags tokens ending in common English place-name suffixes.
var placeSuffixRe = regexp.MustCompile(`(shire|ford|chester|caster|borough|bury|mouth|minster|field|wick)$`)

// firstNames is a census-derived set of common UK given names.
var firstNames = []string{
	"oliver", "george", "harry", "jack", "jacob", "noah", "charlie", "muhammad", "thomas", "oscar",
	"william", "james", "henry", "leo", "alfie", "joshua", "freddie", "archie", "ethan", "isaac",
	"alexander", "joseph", "edward", "samuel", "max", "daniel", "arthur", "lucas", "mohammed", "logan",
	"david", "john", "michael", "paul", "andrew", "mark", "richard", "peter", "robert", "stephen",
	"christopher", "anthony", "kevin", "gary", "steven", "ian", "simon", "martin", "neil", "graham",
	"colin", "philip", "alan", "brian", "keith", "trevor", "nigel", "derek", "barry", "terry",
	"matthew", "adam", "ben", "benjamin", "luke", "ryan", "jamie", "scott", "craig", "lee",
	"dean", "carl", "darren", "wayne", "jason", "stuart", "gavin", "sean", "liam", "connor",
	"callum", "kieran", "nathan", "aaron", "jordan", "tom", "tim", "timothy", "jonathan", "nicholas",
	"dominic", "patrick", "hugh", "rupert", "giles", "julian", "roger", "malcolm", "gordon", "duncan",
	"hamish", "angus", "ewan", "fraser", "rhys", "gareth", "owen", "dylan", "aled", "emyr",
	"raj", "amit", "sanjay", "ravi", "vikram", "arjun", "ali", "omar", "hassan", "imran",
	"jon", "jim", "bob", "rob", "mike", "dave", "steve", "chris", "nick", "matt",
	"olivia", "amelia", "isla", "ava", "mia", "ivy", "lily", "isabella", "rosie", "sophia",
	"grace", "freya", "florence", "willow", "emily", "ella", "poppy", "evie", "elsie", "charlotte",
	"sarah", "emma", "laura", "rachel", "claire", "lisa", "helen", "karen", "susan", "julie",
	"jane", "mary", "elizabeth", "margaret", "catherine", "katherine", "kate", "anne", "ann", "patricia",
	"linda", "jennifer", "nicola", "joanne", "louise", "victoria", "rebecca", "hannah", "jessica", "sophie",
	"amy", "lucy", "chloe", "natalie", "gemma", "kelly", "donna", "tracey", "dawn", "michelle",
	"alison", "fiona", "heather", "jacqueline", "joanna", "caroline", "samantha", "stephanie", "zoe", "zoë",
	"anna", "hayley", "kirsty", "leanne", "amanda", "wendy", "debbie", "deborah", "sally", "jill",
	"ruth", "carol", "sandra", "janet", "diane", "pauline", "gillian", "maureen", "christine", "angela",
	"eleanor", "harriet", "imogen", "georgia", "megan", "bethan", "sian", "cerys", "eilidh", "morag",
	"priya", "anita", "sunita", "aisha", "fatima", "zara", "leah", "abigail", "alice", "phoebe",
	"chelsea", "paris", "victoria", "jade", "amber", "holly", "jasmine", "ruby", "daisy", "molly",
	"milton", "clifford", "stanley", "sidney", "lincoln", "kingsley", "beverley", "shirley", "lesley", "ashley",
}

// surnames is a census-derived set of common UK family names.
var surnames = []string{
	"smith", "jones", "williams", "taylor", "brown", "davies", "evans", "wilson", "thomas", "johnson",
	"roberts", "robinson", "thompson", "wright", "walker", "white", "edwards", "hughes", "green", "hall",
	"lewis", "harris", "clarke", "clark", "patel", "jackson", "wood", "turner", "martin", "cooper",
	"hill", "ward", "morris", "moore", "clark", "lee", "king", "baker", "harrison", "morgan",
	"allen", "james", "scott", "phillips", "watson", "davis", "parker", "price", "bennett", "young",
	"griffiths", "mitchell", "kelly", "cook", "carter", "richardson", "bailey", "collins", "bell", "shaw",
	"murphy", "miller", "cox", "richards", "khan", "marshall", "anderson", "simpson", "ellis", "adams",
	"singh", "begum", "wilkinson", "foster", "chapman", "powell", "webb", "rogers", "gray", "mason",
	"ali", "hunt", "hussain", "campbell", "matthews", "owen", "palmer", "holmes", "mills", "barnes",
	"knight", "lloyd", "butler", "russell", "barker", "fisher", "stevens", "jenkins", "murray", "dixon",
	"harvey", "graham", "pearson", "ahmed", "fletcher", "walsh", "kaur", "gibson", "howard", "andrews",
	"stewart", "elliott", "reynolds", "saunders", "payne", "fox", "ford", "pearce", "day", "brooks",
	"west", "lawrence", "cole", "atkinson", "bradley", "spencer", "gill", "dawson", "ball", "burton",
	"obrien", "o'brien", "watts", "rose", "booth", "perry", "ryan", "grant", "wells", "armstrong",
	"francis", "rees", "hayes", "hart", "hudson", "newman", "barrett", "webster", "hunter", "gregory",
	"carr", "lowe", "page", "marsh", "riley", "dunn", "woods", "parsons", "berry", "stone",
	"reid", "holland", "hawkins", "harding", "porter", "robertson", "newton", "oliver", "reed", "kennedy",
	"williamson", "bird", "gardner", "shah", "dean", "lane", "cooke", "bates", "henderson", "parry",
	"burgess", "bishop", "walton", "burns", "nicholson", "shepherd", "ross", "cross", "long", "freeman",
	"warren", "nicholls", "hamilton", "byrne", "sutton", "mcdonald", "macdonald", "yates", "hodgson", "robson",
	"curtis", "hopkins", "oconnor", "o'connor", "harper", "coleman", "watkins", "moss", "mccarthy", "chambers",
	"doe", "stanley", "bradford", "ashford", "bradbury", "salisbury", "thornbury", "banbury", "sedgewick", "fielding",
	"sharma", "gupta", "kumar", "chowdhury", "rahman", "islam", "miah", "nguyen", "chen", "wong",
	"li", "wang", "zhang", "liu", "yang", "huang", "zhao", "wu", "zhou", "wei",
}

// teamKeywords mark a "team" or "about" section.
var teamKeywords = []string{
	"our team", "meet the team", "the team", "our people", "leadership", "leadership team", "management team",
	"board of directors", "our directors", "about us", "who we are", "meet our", "key people", "our staff",
}

// honorifics are stripped from the front of a name before validation.
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true, "dr": true,
	"sir": true, "prof": true, "professor": true, "dame": true, "lord": true, "lady": true, "rev": true,
}

// recordKeywords mark an official register entry for a company officer.
var recordKeywords = []string{
	"appointed", "companies house", "company officer", "registered officer", "registered director",
	"officer of", "person with significant control",
}

// nameParticles may appear lowercase inside a properly capitalised name.
var nameParticles = map[string]bool{
	"de": true, "da": true, "di": true, "du": true, "del": true, "della": true, "der": true,
	"van": true, "von": true, "le": true, "la": true, "bin": true, "al": true, "ap": true,
	"nic": true, "ni": true, "mac": true, "mc": true,
}
