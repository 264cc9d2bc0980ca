package catalog

// Question pairs the text shown to the user with the read-only statement
// that answers it.
type Question struct {
	Label     string
	Statement string
}

// Rates are percentages rounded to two decimals. Ties break on the grouping
// key ascending so the first group wins.
var questions = []Question{
	{
		Label: "What are the top 10 vehicle_Number involved in drug-related stops?",
		Statement: `
SELECT vehicle_number, COUNT(*) AS stop_count
FROM police
WHERE drugs_related_stop = 1 AND vehicle_number IS NOT NULL
GROUP BY vehicle_number
ORDER BY stop_count DESC, vehicle_number ASC
LIMIT 10`,
	},
	{
		Label: "Which vehicles were most frequently searched?",
		Statement: `
SELECT vehicle_number, COUNT(*) AS search_count
FROM police
WHERE search_conducted = 1 AND vehicle_number IS NOT NULL
GROUP BY vehicle_number
ORDER BY search_count DESC, vehicle_number ASC
LIMIT 10`,
	},
	{
		Label: "Which driver age group had the highest arrest rate?",
		Statement: `
SELECT driver_age,
	ROUND(SUM(CASE WHEN is_arrested = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS arrest_rate
FROM police
GROUP BY driver_age
ORDER BY arrest_rate DESC, driver_age ASC
LIMIT 1`,
	},
	{
		Label: "What is the gender distribution of drivers stopped in each country?",
		Statement: `
SELECT country_name, driver_gender, COUNT(*) AS total_stops
FROM police
GROUP BY country_name, driver_gender
ORDER BY country_name, driver_gender`,
	},
	{
		Label: "Which race and gender combination has the highest search rate?",
		Statement: `
SELECT driver_race, driver_gender,
	ROUND(SUM(CASE WHEN search_conducted = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS search_rate
FROM police
GROUP BY driver_race, driver_gender
ORDER BY search_rate DESC, driver_race ASC, driver_gender ASC
LIMIT 1`,
	},
	{
		Label: "What time of day sees the most traffic stops?",
		Statement: `
SELECT strftime('%H', timestamp) AS hour, COUNT(*) AS stop_count
FROM police
GROUP BY hour
ORDER BY stop_count DESC, hour ASC
LIMIT 1`,
	},
	{
		Label: "What is the average stop duration for different violations?",
		Statement: `
SELECT violation,
	ROUND(AVG(CASE
		WHEN stop_duration = '0-15 Min' THEN 7.5
		WHEN stop_duration = '16-30 Min' THEN 23
		WHEN stop_duration = '30+ Min' THEN 35
		ELSE NULL
	END), 2) AS avg_duration
FROM police
GROUP BY violation
ORDER BY avg_duration DESC, violation ASC`,
	},
	{
		Label: "Are stops during the night more likely to lead to arrests?",
		Statement: `
SELECT
	CASE
		WHEN CAST(strftime('%H', timestamp) AS INTEGER) BETWEEN 0 AND 5 THEN 'Night'
		ELSE 'Day'
	END AS period,
	ROUND(SUM(CASE WHEN is_arrested = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS arrest_rate
FROM police
GROUP BY period`,
	},
	{
		Label: "Which violations are most associated with searches or arrests?",
		Statement: `
SELECT violation,
	SUM(CASE WHEN search_conducted = 1 THEN 1 ELSE 0 END) AS search_count,
	SUM(CASE WHEN is_arrested = 1 THEN 1 ELSE 0 END) AS arrest_count
FROM police
GROUP BY violation
ORDER BY arrest_count DESC, violation ASC`,
	},
	{
		Label: "Which violations are most common among younger drivers (<25)?",
		Statement: `
SELECT violation, COUNT(*) AS total
FROM police
WHERE driver_age < 25
GROUP BY violation
ORDER BY total DESC, violation ASC
LIMIT 1`,
	},
	{
		Label: "Is there a violation that rarely results in search or arrest?",
		Statement: `
SELECT violation,
	COUNT(*) AS total_stops,
	ROUND(SUM(CASE WHEN search_conducted = 1 OR is_arrested = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS action_rate
FROM police
GROUP BY violation
HAVING action_rate < 20
ORDER BY action_rate ASC, violation ASC`,
	},
	{
		Label: "Which countries report the highest rate of drug-related stops?",
		Statement: `
SELECT country_name,
	ROUND(SUM(CASE WHEN drugs_related_stop = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS drug_rate
FROM police
GROUP BY country_name
ORDER BY drug_rate DESC, country_name ASC
LIMIT 1`,
	},
	{
		Label: "What is the arrest rate by country and violation?",
		Statement: `
SELECT country_name, violation,
	ROUND(SUM(CASE WHEN is_arrested = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS arrest_rate
FROM police
GROUP BY country_name, violation
ORDER BY arrest_rate DESC, country_name ASC, violation ASC`,
	},
	{
		Label: "Which country has the most stops with search conducted?",
		Statement: `
SELECT country_name,
	COUNT(*) AS total,
	SUM(CASE WHEN search_conducted = 1 THEN 1 ELSE 0 END) AS searches
FROM police
GROUP BY country_name
ORDER BY searches DESC, country_name ASC
LIMIT 1`,
	},
	{
		Label: "Yearly Breakdown of Stops and Arrests by Country?",
		Statement: `
SELECT strftime('%Y', timestamp) AS year, country_name,
	COUNT(*) AS stops,
	SUM(CASE WHEN is_arrested = 1 THEN 1 ELSE 0 END) AS arrests
FROM police
GROUP BY year, country_name
ORDER BY year, arrests DESC, country_name ASC`,
	},
	{
		Label: "Driver Violation Trends Based on Age and Race?",
		Statement: `
SELECT driver_race, driver_age, violation, COUNT(*) AS count
FROM police
GROUP BY driver_race, driver_age, violation
ORDER BY count DESC, driver_race ASC, driver_age ASC, violation ASC`,
	},
	{
		Label: "Time Period Analysis of Stops?",
		Statement: `
SELECT
	strftime('%Y', timestamp) AS year,
	strftime('%m', timestamp) AS month,
	strftime('%H', timestamp) AS hour,
	strftime('%H', timestamp) || ':00 to ' || strftime('%H', timestamp) || ':59' AS time_range,
	COUNT(*) AS count
FROM police
GROUP BY year, month, hour
ORDER BY year, month, hour`,
	},
	{
		Label: "Violations with High Search and Arrest Rates?",
		Statement: `
SELECT violation,
	ROUND(SUM(CASE WHEN is_arrested = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS arrest_rate,
	ROUND(SUM(CASE WHEN search_conducted = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS search_rate
FROM police
GROUP BY violation
ORDER BY arrest_rate DESC, search_rate DESC, violation ASC
LIMIT 10`,
	},
	{
		Label: "Driver Demographics by Country?",
		Statement: `
SELECT country_name, driver_gender, AVG(driver_age) AS avg_age
FROM police
WHERE driver_age IS NOT NULL
GROUP BY country_name, driver_gender
ORDER BY country_name, driver_gender`,
	},
	{
		Label: "Top 5 Violations with Highest Arrest Rates?",
		Statement: `
SELECT violation,
	ROUND(SUM(CASE WHEN is_arrested = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS arrest_rate
FROM police
GROUP BY violation
ORDER BY arrest_rate DESC, violation ASC
LIMIT 5`,
	},
}

// Questions returns the catalog in display order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

func Len() int {
	return len(questions)
}

// Lookup returns the question at a zero-based index.
func Lookup(index int) (Question, bool) {
	if index < 0 || index >= len(questions) {
		return Question{}, false
	}
	return questions[index], true
}
