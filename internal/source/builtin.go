package source

import (
	"github.com/imovelhub/ingest/internal/extract"
	"github.com/imovelhub/ingest/internal/ingest"
	"github.com/imovelhub/ingest/internal/paginate"
)

// Builtin returns the adapters for the currently integrated agencies.
// Selectors track each site's markup as observed and drift over time; a
// broken selector degrades to null fields, never to a failed run.
func Builtin() []Adapter {
	return []Adapter{
		auxiliadora(),
		jefersonAlba(),
		casaImoveis(),
	}
}

func auxiliadora() Adapter {
	const card = `.CardImoveisVitrine_container__ZZjyw`
	return Adapter{
		Name:          "auxiliadora",
		Agency:        "Auxiliadora Predial",
		BaseURL:       "https://www.auxiliadorapredial.com.br/comprar/residencial/sc+imbituba",
		Render:        true,
		WaitSelector:  card,
		PageURLFormat: "%s?page=%d",
		Pagination: paginate.Rule{
			Mode:           paginate.ModeButtons,
			ButtonSelector: `button[aria-label^="Go to page"]`,
		},
		Extraction: extract.Config{
			Agency:       "Auxiliadora Predial",
			BaseURL:      "https://www.auxiliadorapredial.com.br/comprar/residencial/sc+imbituba",
			CardSelector: card,
			// The site shows no price on some cards; their business rule
			// records zero, not null.
			ZeroPriceWhenMissing: true,
			Rules: extract.RuleSet{
				Link: extract.Rule{{Selector: `a[target="_blank"]`, Attr: "href"}},
				Price: extract.Rule{
					{Selector: `span[style*="color: rgb(106, 161, 86)"]`},
					{Selector: `span[style*="color: rgb(62, 64, 66)"]`},
				},
				Address: extract.Rule{{Selector: `.CardImoveisVitrine_location__9c96p span`}},
				Type:    extract.Rule{{Selector: `.CardImoveisVitrine_headContent__J9iqi h4`}},
				Area:    extract.Rule{{Selector: `img[alt="Metragem"] + span`}},
				Bedrooms: extract.Rule{
					{Selector: `img[alt="Quartos"] + span`},
				},
				Bathrooms: extract.Rule{
					{Selector: `img[alt="Banheiros"] + span`},
				},
				Parking: extract.Rule{
					{Selector: `img[alt="Garagens"] + span`},
				},
				Ref: extract.Rule{{
					Selector:   `.CardImoveisVitrine_cardImovelFooter__ef_ha span`,
					Contains:   "ref:",
					TrimPrefix: "ref:",
				}},
			},
		},
		Enrichment: EnrichmentConfig{
			Selectors: ingest.EnrichmentSelectors{
				Content: []string{`section.section-sobre-detalhe #descricao div.half-text-hidden`},
				Photos:  []string{`dialog.mosaico-container li.item-mosaico img`},
			},
		},
	}
}

func jefersonAlba() Adapter {
	const card = `[class*="col-imovel"]`
	return Adapter{
		Name:          "jefersonalba",
		Agency:        "Jeferson Alba",
		BaseURL:       "https://imobiliariajefersonealba.com.br/vendas/imoveis",
		Render:        true,
		WaitSelector:  card,
		PageURLFormat: "%s/%d",
		Pagination: paginate.Rule{
			Mode:            paginate.ModeLastControl,
			LastControl:     `a.page-link[aria-label="Última"]`,
			ActiveIndicator: `li.page-item.active a.page-link`,
		},
		Extraction: extract.Config{
			Agency:       "Jeferson Alba",
			BaseURL:      "https://imobiliariajefersonealba.com.br/vendas/imoveis",
			CardSelector: card,
			RefPattern:   `/ver/([^/?#]+)`,
			// Cards under "consulte" pricing carry no amount; the agency
			// records zero for those.
			ZeroPriceWhenMissing: true,
			Rules: extract.RuleSet{
				Link:    extract.Rule{{Selector: "a", Attr: "href"}},
				Price:   extract.Rule{{Selector: "span.--price"}},
				Address: extract.Rule{{Selector: "span.--location"}},
				Type:    extract.Rule{{Selector: "span.--type"}},
				Area: extract.Rule{
					{Selector: `ul.box-imovel-items.--lg li.--item strong`, Index: 3},
				},
				Bedrooms: extract.Rule{
					{Selector: `ul.box-imovel-items.--lg li.--item strong`, Index: 0},
				},
				Bathrooms: extract.Rule{
					{Selector: `ul.box-imovel-items.--lg li.--item strong`, Index: 1},
				},
				Parking: extract.Rule{
					{Selector: `ul.box-imovel-items.--lg li.--item strong`, Index: 2},
				},
				Ref: extract.Rule{{Selector: "span.--code", TrimPrefix: "Cód."}},
			},
		},
		Enrichment: EnrichmentConfig{
			Selectors: ingest.EnrichmentSelectors{
				Content: []string{`.imovel-content-section`},
				Photos:  []string{`.tab-content #imovel-fotos .container .img-gallery-magnific .magnific-img a img`},
			},
		},
	}
}

func casaImoveis() Adapter {
	return Adapter{
		Name:    "casaimoveis",
		Agency:  "Casa Imóveis",
		BaseURL: "https://www.casaimoveisimbituba.com.br/imoveis/a-venda",
		Render:  false,
		Pagination: paginate.Rule{
			// The site loads everything onto one index page.
			Mode:           paginate.ModeButtons,
			ButtonSelector: `ul.pagination a.page-num`,
		},
		Extraction: extract.Config{
			Agency:       "Casa Imóveis",
			BaseURL:      "https://www.casaimoveisimbituba.com.br/imoveis/a-venda",
			CardSelector: "div.LI_Imovel",
			Rules: extract.RuleSet{
				Name:    extract.Rule{{Selector: ".Title"}, {Selector: ".title"}},
				Link:    extract.Rule{{Selector: "a", Attr: "href"}},
				Image:   extract.Rule{{Selector: "img", Attr: "src"}},
				Address: extract.Rule{{Selector: ".Endereco"}},
				Price: extract.Rule{
					{Selector: ".Valor .value"},
					{Selector: ".value"},
				},
				Bathrooms: extract.Rule{{Selector: ".BATHROOM"}},
				Parking:   extract.Rule{{Selector: "span", Contains: "Vaga"}},
				Ref:       extract.Rule{{Selector: ".ImovelId"}},
			},
		},
		Enrichment: EnrichmentConfig{
			Selectors: ingest.EnrichmentSelectors{
				Content: []string{`#WID11780_Block_1_central_left_2 .TextBox`},
				Photos: []string{
					`.fotorama__nav__frame .fotorama__img`,
					`.fotorama__img`,
				},
			},
		},
	}
}
