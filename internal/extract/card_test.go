package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/ingest"
)

const vitrinePage = `<html><body>
<div class="card-imovel">
  <h4 class="card-type">Apartamento Padrão</h4>
  <a target="_blank" href="/imovel/apto-centro/759737"></a>
  <span class="card-price">R$ 3.950.000</span>
  <div class="card-location"><span>Barra de Ibiraquera, Imbituba - SC</span></div>
  <img alt="Metragem"/><span>300m²</span>
  <img alt="Quartos"/><span>4</span>
  <img alt="Banheiros"/><span>3</span>
  <img alt="Garagens"/><span>2</span>
  <footer class="card-footer"><span>ref: 759737</span></footer>
</div>
<div class="card-imovel">
  <h4 class="card-type">Cobertura</h4>
  <a target="_blank" href="/imovel/cobertura-praia/759738"></a>
  <div class="card-location"><span>Centro, Imbituba - SC</span></div>
  <img alt="Metragem"/><span>0m²</span>
  <footer class="card-footer"><span>ref: 759738</span></footer>
</div>
</body></html>`

func vitrineRules() RuleSet {
	return RuleSet{
		Link:      Rule{{Selector: `a[target="_blank"]`, Attr: "href"}},
		Price:     Rule{{Selector: "span.card-price"}, {Selector: "span.card-price-alt"}},
		Address:   Rule{{Selector: ".card-location span"}},
		Type:      Rule{{Selector: "h4.card-type"}},
		Area:      Rule{{Selector: `img[alt="Metragem"] + span`}},
		Bedrooms:  Rule{{Selector: `img[alt="Quartos"] + span`}},
		Bathrooms: Rule{{Selector: `img[alt="Banheiros"] + span`}},
		Parking:   Rule{{Selector: `img[alt="Garagens"] + span`}},
		Ref:       Rule{{Selector: ".card-footer span", Contains: "ref:", TrimPrefix: "ref:"}},
	}
}

func TestExtractResolvesFieldsAndNulls(t *testing.T) {
	t.Parallel()

	ex, err := New(Config{
		Agency:               "Auxiliadora Predial",
		BaseURL:              "https://example.com.br/comprar",
		CardSelector:         "div.card-imovel",
		Rules:                vitrineRules(),
		ZeroPriceWhenMissing: true,
	}, zap.NewNop())
	require.NoError(t, err)

	listings, err := ex.Extract(ingest.Page{URL: "https://example.com.br/comprar", HTML: vitrinePage})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	require.Equal(t, "759737", first.Ref)
	require.Equal(t, "Auxiliadora Predial", first.Agency)
	require.NotNil(t, first.Link)
	require.Equal(t, "https://example.com.br/imovel/apto-centro/759737", *first.Link)
	require.NotNil(t, first.Price)
	require.InDelta(t, 3950000.0, *first.Price, 0.001)
	require.NotNil(t, first.Type)
	require.Equal(t, "Apartamento", *first.Type)
	require.NotNil(t, first.Area)
	require.Equal(t, 300, *first.Area)
	require.NotNil(t, first.Bedrooms)
	require.Equal(t, 4, *first.Bedrooms)
	require.True(t, first.ForSale)
	require.False(t, first.Published)
	require.Nil(t, first.AgentID)

	second := listings[1]
	require.Equal(t, "759738", second.Ref)
	require.NotNil(t, second.Type)
	require.Equal(t, "Cobertura", *second.Type, "unmatched type passes through")
	require.Nil(t, second.Area, "zero area is absent")
	require.Nil(t, second.Bedrooms)
	require.NotNil(t, second.Price)
	require.Zero(t, *second.Price, "source records zero for missing prices")
}

func TestExtractRefFromLinkPattern(t *testing.T) {
	t.Parallel()

	const page = `<html><body>
	<div class="col-imovel"><a href="/vendas/imoveis/ver/4412/casa-centro"></a></div>
	<div class="col-imovel"><a href="/vendas/imoveis/sem-ref"></a></div>
	</body></html>`

	ex, err := New(Config{
		Agency:       "Jeferson Alba",
		BaseURL:      "https://example.com.br/vendas/imoveis",
		CardSelector: "div.col-imovel",
		Rules: RuleSet{
			Link: Rule{{Selector: "a", Attr: "href"}},
		},
		RefPattern: `/ver/([^/?#]+)`,
	}, zap.NewNop())
	require.NoError(t, err)

	listings, err := ex.Extract(ingest.Page{URL: "https://example.com.br/vendas/imoveis", HTML: page})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "4412", listings[0].Ref)
	require.Empty(t, listings[1].Ref, "no pattern match leaves ref empty for dedup to drop")
	require.Nil(t, listings[1].Price, "no zero-price rule for this source")
}

func TestRuleFallbackOrder(t *testing.T) {
	t.Parallel()

	const page = `<html><body><div class="card">
	<span class="price-alt">R$ 850.000</span>
	</div></body></html>`

	ex, err := New(Config{
		Agency:       "test",
		BaseURL:      "https://example.com.br",
		CardSelector: "div.card",
		Rules: RuleSet{
			Price: Rule{
				{Selector: "span.price-main"},
				{Selector: "span.price-alt"},
			},
			Ref: Rule{{Selector: ".missing"}},
		},
	}, zap.NewNop())
	require.NoError(t, err)

	listings, err := ex.Extract(ingest.Page{URL: "https://example.com.br", HTML: page})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	require.NotNil(t, listings[0].Price)
	require.InDelta(t, 850000.0, *listings[0].Price, 0.001)
}
