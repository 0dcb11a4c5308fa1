package normalize

// CityName is the municipality itself. It is never a valid neighborhood.
const CityName = "PORTO ALEGRE"

// Neighborhoods is the fixed registry of the 90 Porto Alegre
// neighborhood names the corpus datasets use, canonical uppercase form.
var Neighborhoods = []string{
	"ABERTA DOS MORROS", "AGRONOMIA", "ANCHIETA", "ARQUIPÉLAGO", "AUXILIADORA",
	"AZENHA", "BELA VISTA", "BELÉM NOVO", "BELÉM VELHO", "BOA VISTA",
	"BOA VISTA DO SUL", "BOM FIM", "BOM JESUS", "CAMAQUÃ", "CAMPO NOVO",
	"CASCATA", "CAVALHADA", "CEL. APARICIO BORGES", "CENTRO HISTÓRICO", "CHAPÉU DO SOL",
	"CHÁCARA DAS PEDRAS", "CIDADE BAIXA", "COSTA E SILVA", "CRISTAL", "CRISTO REDENTOR",
	"ESPÍRITO SANTO", "EXTREMA", "FARRAPOS", "FARROUPILHA", "FLORESTA",
	"GLÓRIA", "GUARUJÁ", "HIGIENÓPOLIS", "HÍPICA", "HUMAITÁ",
	"INDEPENDÊNCIA", "IPANEMA", "JARDIM BOTÂNICO", "JARDIM CARVALHO", "JARDIM DO SALSO",
	"JARDIM EUROPA", "JARDIM FLORESTA", "JARDIM ITU", "JARDIM LEOPOLDINA", "JARDIM LINDÓIA",
	"JARDIM SABARÁ", "JARDIM SÃO PEDRO", "JARDIM VILA NOVA", "LAGEADO", "LAMI",
	"LOMBA DO PINHEIRO", "MÁRIO QUINTANA", "MEDIANEIRA", "MENINO DEUS", "MOINHOS DE VENTO",
	"MONT SERRAT", "NAVEGANTES", "NONOAI", "PARQUE SANTA FÉ", "PARTENON",
	"PASSO D'AREIA", "PASSO DAS PEDRAS", "PEDRA REDONDA", "PETRÓPOLIS", "PONTA GROSSA",
	"PRAIA DE BELAS", "RESTINGA", "RIO BRANCO", "RUBEM BERTA", "SANTA CECÍLIA",
	"SANTA MARIA GORETTI", "SANTA TEREZA", "SANTANA", "SANTO ANTÔNIO", "SÃO GERALDO",
	"SÃO JOÃO", "SÃO JOSÉ", "SÃO SEBASTIÃO", "SARANDI", "SERRARIA",
	"TERESÓPOLIS", "TRÊS FIGUEIRAS", "TRISTEZA", "VILA ASSUNÇÃO", "VILA CONCEIÇÃO",
	"VILA IPIRANGA", "VILA JARDIM", "VILA JOÃO PESSOA", "VILA NOVA", "VILA SÃO JOSÉ",
}

// abbreviations maps common unaccented or shorthand spellings to the
// canonical registry name. Checked in order, first match wins.
var abbreviations = []struct{ short, canonical string }{
	{"TRES FIGUEIRAS", "TRÊS FIGUEIRAS"},
	{"PETROPOLIS", "PETRÓPOLIS"},
	{"BELEM", "BELÉM NOVO"},
	{"CENTRO", "CENTRO HISTÓRICO"},
}
