package taxonomy

import "HeadlineScreener/internal/domain"

// Built-in taxonomy names.
const (
	Steel  = "steel"
	Iron   = "iron"
	Cement = "cement"
)

// ProjectStatuses is the fixed status vocabulary shared by every built-in taxonomy.
var ProjectStatuses = []string{
	"Announced",
	"Cancelled",
	"Construction",
	"Operating",
	"Finalized (research & testing)",
	"Paused/postponed",
}

var steelIronTechnologies = []string{
	"H-DRI (hydrogen direct reduced iron or sponge iron)",
	"CCS for BF-BOF (carbon capture storage for blast furnace)",
	"H-DRI + EAF (hydrogen direct reduced iron and electric arc furnace)",
	"CCS for power station (carbon capture storage)",
	"H-DRI + ESF (hydrogen direct reduced iron and electric smelting furnace)",
	"CCUS for BF-BOF (carbon capture and utilization and storage for blast furnace)",
	"MOE (molten oxide electrolysis)",
	"CCU for BF-BOF (carbon capture and utilization for blast furnace)",
	"Electrowinning",
	"H2 (hydrogen) production",
	"ESR (electric smelting reduction)",
	"Biomass for BF (blast furnace)",
	"Electric Smelting Furnace (ESF)",
	"BF-BOF to EAF for green iron (blast furnace to electric arc furnace)",
	"Induction melting furnace",
	"BF-BOF to HIsarna (blast furnace)",
	"NG-DRI (natural gas-based direct reduction) to H-DRI (hydrogen direct reduced iron)",
	"H2-based rolling mill",
	"NG-DRI to H-DRI + EAF (natural gas-based direct reduction to hydrogen direct reduced iron and electric arc furnace)",
	"EAF using imported NG-DRI (electric arc furnace using imported natural gas-based direct reduction)",
	"NG-DRI to H-DRI + ESF (natural gas-based direct reduction to hydrogen direct reduced iron and electric smelting furnace)",
	"NG-DRI (natural gas-based direct reduction)",
	"Biogenic syngas DRI (direct reduced iron)",
	"NG-DRI + EAF (natural gas-based direct reduction and electric arc furnace)",
	"Electrochemical process",
	"NG-DRI + CCS (natural gas-based direct reduction and carbon capture storage)",
	"H2 injection to BF (blast furnace)",
	"Green hydrogen",
	"SOEC (solid oxide electrolysis cell)",
	"biochar use",
	"CCS (carbon capture storage)",
	"briquetted iron",
}

var cementTechnologies = []string{
	"CCS (carbon capture storage)",
	"CCUS (carbon capture and utilization storage)",
	"Meca clay",
	"Kiln for calcined clay",
}

var steelQuestions = []string{
	"Is this headline about an announcement for a conference, forum, or event?",
	"Is this headline about sports, movies, fashion (like watches), food, or pop culture?",
	"Is the headline about new leadership in a company or a merge, acquisition, or consolidation? If it is about a collaboration, say no.",
	"Does the headline explicitly mention iron or steel consumption? If it is about a supply agreement or innovation to manufacturing green steel, say no.",
	"Is this headline about net profit or profit results of a company? Is the headline about total production?",
	"Is this headline about production capacity or productions goals?",
	"Is this headline about inflation, tariffs, costs, imports, exports or any other transactions? If it is explicitly about a supply agreement, say no.",
	"Is this headline about a metal product unrelated to steel, such as coal?",
	"Is this headline about stock market performances, layoffs or creating jobs, dividends, financial results, or commodity prices? Does it mention the words market or sector?",
	"Is this headline about politics, national or international policy, trade, or warfare? If it is about a developing steel plant or technology, say no.",
	"Is this headline about an award or prize? If it is about an investment or grant for steel, say no.",
	"Is this headline about deliveries or shipping? Is this headline about warnings or threats? If it is about a collaboration for green hydrogen, renovations, reducing steel emissions, or a similar green-initiative, say no.",
	"Is this headline a broad review or opinion piece?",
	"Is this headline about a country or group's broad goals for CO2 emission cuts or product sourcing?",
	"Is this headline about a mine? If it is about a collaboration for green hydrogen, renovations, reducing steel emissions, or a similar green-initiative, say no.",
	"Is the headline about the release of a company report or the financial/fiscal year (FY)?",
	"Is the headline about the ability to produce bars, or the amount of steel bars that can be produced?",
	"Is the headline completely unrelated to projects or agreements in manufacturing, steel production, or technologies for steel?",
}

var ironQuestions = []string{
	"Is this headline about an announcement for a conference or forum, or related event?",
	"Is this headline about sports, movies, fashion (like watches), food, or pop culture?",
	"Is the headline about new leadership in a company or a merge, acquisition, or consolidation? If it is about a collaboration, say no.",
	"Is this headline about iron or steel consumption? If it is explicitly about a supply agreement, say no.",
	"Is this headline about net profit or profit results of a company?",
	"Is this headline about production capacity or productions goals?",
	"Is this headline about inflation, tariffs, imports, exports or any other transactions? If it is explicitly about a supply agreement, say no.",
	"Is this headline about a mining product unrelated to iron, such as coal?",
	"Is this headline about stock market performances, layoffs or creating jobs, dividends, financial results, or commodity prices? Does it mention the words market or sector?",
	"Is this headline about politics, national or international policy, trade, or warfare?",
	"Is this headline about an award or prize? If it is about an investment or grant for iron, say no.",
	"Is this headline about deliveries or shipping? Is this headline about warnings or threats?",
	"Is this headline an opinion piece? If it relates to green iron/steel/metal or iron/steel/metal production, including green hydrogen, say no.",
	"Is this headline about a mine that has already been in operation? If it is about a collaboration for green hydrogen, renovations, reducing iron emissions, or a similar green-initiative, say no.",
	"Is the headline about the release of a company report or financial/fiscal year (FY) results?",
	"Is this headline about a country or group's broad goals for CO2 emission cuts or product sourcing?",
	"Is the headline completely unrelated to projects or agreements in iron production, or technologies for iron?",
}

var cementQuestions = []string{
	"Is this headline about an announcement for a conference or forum, or related event?",
	"Is this headline about sports, movies, fashion (like watches), food, or pop culture?",
	"Is the headline about new leadership in a company or a merge, acquisition, or consolidation? If it is about a collaboration, say no.",
	"Is this headline about net profit or profit results of a company?",
	"Is this headline about production capacity or productions goals?",
	"Is this headline about workloads, operating margins, exports, bonds, or dispatches?",
	"Is this headline about the construction sector or construction, with no mention of cement innovations or projects?",
	"Does this headline explicitly mention consumption? If it is explicitly about a supply agreement, say no.",
	"Is this headline about inflation, tariffs, imports, exports or any other transactions? If it is explicitly about a supply agreement, say no.",
	"Is this headline about stock market performances, layoffs or creating jobs, dividends, financial results, or commodity prices? Does it mention the words market or sector?",
	"Is this headline about politics, national or international policy, trade, or warfare?",
	"Is this headline about an award or prize? If it is about an investment or grant for cement, say no. If it is about a certification or permission, say no.",
	"Is this headline about deliveries or shipping? Is this headline about warnings or threats?",
	"Is this headline an opinion piece? If it relates to green cement, green cement production, carbon capture/usage, or renewable energy sources, say no.",
	"Is the headline about the release of a company report or financial/fiscal year (FY) results?",
	"Is the headline completely unrelated to cement, facilities/plants, CO2 reuse, or technologies for cement?",
	"Is this headline about a country or group's broad goals for CO2 emission cuts or product sourcing?",
}

// Defaults returns fresh copies of the built-in taxonomies.
func Defaults() []domain.Taxonomy {
	return []domain.Taxonomy{
		domain.Taxonomy{Name: Steel, Questions: steelQuestions, Technologies: steelIronTechnologies, Statuses: ProjectStatuses}.Clone(),
		domain.Taxonomy{Name: Iron, Questions: ironQuestions, Technologies: steelIronTechnologies, Statuses: ProjectStatuses}.Clone(),
		domain.Taxonomy{Name: Cement, Questions: cementQuestions, Technologies: cementTechnologies, Statuses: ProjectStatuses}.Clone(),
	}
}
