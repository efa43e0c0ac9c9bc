package bank

import "github.com/civicbriefs/planner/internal/section"

// blueprints holds the fixed ordered fallback templates per section.
// Order matters: the cyclic index and the variant suffix both depend on it.
var blueprints = map[section.Key][]Blueprint{
	section.Polity: {
		{
			Question:   "Which Article empowers the Supreme Court to issue writs for the enforcement of Fundamental Rights?",
			Topic:      "Fundamental Rights",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Article 32",
				"B": "Article 21",
				"C": "Article 356",
				"D": "Article 143",
			},
			Answer: "A",
		},
		{
			Question:   "The concept of judicial review in the Indian Constitution is borrowed from which country?",
			Topic:      "Judiciary",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "United Kingdom",
				"B": "United States",
				"C": "Canada",
				"D": "Ireland",
			},
			Answer: "B",
		},
		{
			Question:   "Who presides over the joint sitting of Parliament?",
			Topic:      "Parliament",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "President of India",
				"B": "Speaker of Lok Sabha",
				"C": "Chairman of Rajya Sabha",
				"D": "Prime Minister",
			},
			Answer: "B",
		},
		{
			Question:   "Which schedule contains the languages recognized by the Constitution?",
			Topic:      "Schedules of Constitution",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Sixth Schedule",
				"B": "Seventh Schedule",
				"C": "Eighth Schedule",
				"D": "Tenth Schedule",
			},
			Answer: "C",
		},
	},
	section.Economy: {
		{
			Question:   "Which index is released by the National Statistical Office to track retail inflation?",
			Topic:      "Inflation",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Wholesale Price Index",
				"B": "Consumer Price Index",
				"C": "Index of Industrial Production",
				"D": "Purchasing Managers Index",
			},
			Answer: "B",
		},
		{
			Question:   "Which body recommends the distribution of tax revenues between the Union and the States?",
			Topic:      "Public Finance",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Finance Commission",
				"B": "GST Council",
				"C": "NITI Aayog",
				"D": "RBI",
			},
			Answer: "A",
		},
		{
			Question:   "MSP for crops in India is recommended by which commission?",
			Topic:      "Agriculture",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Finance Commission",
				"B": "Tariff Commission",
				"C": "Commission for Agricultural Costs and Prices",
				"D": "NABARD",
			},
			Answer: "C",
		},
		{
			Question:   "Which of the following is NOT a component of the balance of payments?",
			Topic:      "External Sector",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Current Account",
				"B": "Capital Account",
				"C": "Financial Account",
				"D": "Revenue Account",
			},
			Answer: "D",
		},
	},
	section.History: {
		{
			Question:   "Which of the following was NOT a feature of the Indus Valley Civilization?",
			Topic:      "Ancient India",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Grid pattern town planning",
				"B": "Use of iron tools",
				"C": "Standardized weights",
				"D": "Advanced drainage",
			},
			Answer: "B",
		},
		{
			Question:   "Who among the following founded the Prarthana Samaj?",
			Topic:      "Modern India",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Atmaram Pandurang",
				"B": "M.G. Ranade",
				"C": "Swami Dayanand",
				"D": "Keshab Chandra Sen",
			},
			Answer: "A",
		},
		{
			Question:   "Which Governor-General introduced the Doctrine of Lapse?",
			Topic:      "British Policies",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Lord Dalhousie",
				"B": "Lord Wellesley",
				"C": "Lord Hastings",
				"D": "Lord Bentick",
			},
			Answer: "A",
		},
		{
			Question:   "The Battle of Plassey was fought in which year?",
			Topic:      "Modern India",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "1748",
				"B": "1757",
				"C": "1764",
				"D": "1782",
			},
			Answer: "B",
		},
	},
	section.Geography: {
		{
			Question:   "Which of the following rivers is a tributary of the Brahmaputra?",
			Topic:      "Indian Rivers",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Beas",
				"B": "Lohit",
				"C": "Chambal",
				"D": "Son",
			},
			Answer: "B",
		},
		{
			Question:   "Black cotton soil is ideal for the cultivation of which crop?",
			Topic:      "Soils",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Rice",
				"B": "Tea",
				"C": "Cotton",
				"D": "Wheat",
			},
			Answer: "C",
		},
		{
			Question:   "The Tropic of Cancer passes through how many Indian states?",
			Topic:      "Location Based",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "6",
				"B": "8",
				"C": "9",
				"D": "10",
			},
			Answer: "C",
		},
		{
			Question:   `Which plateau is known as the "Mineral Storehouse" of India?`,
			Topic:      "Physiography",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Deccan Plateau",
				"B": "Chota Nagpur Plateau",
				"C": "Malwa Plateau",
				"D": "Bastar Plateau",
			},
			Answer: "B",
		},
	},
	section.Environment: {
		{
			Question:   "Which Indian Act provides the legal basis for declaring Eco-sensitive Zones?",
			Topic:      "Conservation",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Forest Conservation Act, 1980",
				"B": "Wildlife Protection Act, 1972",
				"C": "Biological Diversity Act, 2002",
				"D": "Environment Protection Act, 1986",
			},
			Answer: "B",
		},
		{
			Question:   "Biosphere Reserves aim to conserve which level of biodiversity?",
			Topic:      "Biodiversity",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Genetic",
				"B": "Species",
				"C": "Ecosystem",
				"D": "All of the above",
			},
			Answer: "D",
		},
		{
			Question:   "Which gas has the highest global warming potential among the following?",
			Topic:      "Climate Change",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Carbon dioxide",
				"B": "Methane",
				"C": "Nitrous oxide",
				"D": "Sulphur hexafluoride",
			},
			Answer: "D",
		},
		{
			Question:   "Project Tiger was launched in which year?",
			Topic:      "Schemes",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "1969",
				"B": "1973",
				"C": "1985",
				"D": "1992",
			},
			Answer: "B",
		},
	},
	section.ScienceTech: {
		{
			Question:   "Which of the following is a reusable launch vehicle developed by ISRO?",
			Topic:      "Space",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "PSLV",
				"B": "GSLV Mk III",
				"C": "RLV-TD",
				"D": "ASLV",
			},
			Answer: "C",
		},
		{
			Question:   "CRISPR technology is primarily used for what purpose?",
			Topic:      "Biotechnology",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Protein folding",
				"B": "Genome editing",
				"C": "RNA sequencing",
				"D": "Drug delivery",
			},
			Answer: "B",
		},
		{
			Question:   "Which mission aims to study the Sun from L1 point?",
			Topic:      "Space",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Chandrayaan-3",
				"B": "Mangalyaan",
				"C": "Aditya-L1",
				"D": "Gaganyaan",
			},
			Answer: "C",
		},
		{
			Question:   "Li-Fi technology primarily uses which wave for data transmission?",
			Topic:      "Communication",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Radio waves",
				"B": "Microwaves",
				"C": "Infrared/Visible light",
				"D": "Gamma rays",
			},
			Answer: "C",
		},
	},
	section.CurrentAffairs: {
		{
			Question:   "The 'PM-PRANAM' scheme is related to which of the following?",
			Topic:      "Government Schemes",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Crop insurance",
				"B": "Fertilizer usage",
				"C": "Rural housing",
				"D": "Skill development",
			},
			Answer: "B",
		},
		{
			Question:   "Which organization publishes the Global Gender Gap Report?",
			Topic:      "Reports",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "UNDP",
				"B": "World Economic Forum",
				"C": "World Bank",
				"D": "IMF",
			},
			Answer: "B",
		},
		{
			Question:   "'PM MITRA' parks are associated with which sector?",
			Topic:      "Industries",
			Difficulty: "Easy",
			Options: map[string]string{
				"A": "Electronics",
				"B": "Textiles",
				"C": "Automobile",
				"D": "Pharmaceuticals",
			},
			Answer: "B",
		},
		{
			Question:   "India recently signed the Artemis Accords. These are related to which domain?",
			Topic:      "International",
			Difficulty: "Medium",
			Options: map[string]string{
				"A": "Space exploration",
				"B": "Climate finance",
				"C": "Nuclear disarmament",
				"D": "Cyber security",
			},
			Answer: "A",
		},
	},
}

// BlueprintCount returns the number of templates configured for a section.
func BlueprintCount(key section.Key) int {
	return len(blueprints[key])
}
