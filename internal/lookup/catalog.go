package lookup

import "net/url"

// DefaultSources builds the stock upstream catalog from the two
// configured providers. The FetchBrasil endpoints share one token and
// one URL shape; the Apis Brasil endpoints differ per query kind.
func DefaultSources(apisBrasilBase, fetchBrasilBase, fetchBrasilToken string) []Source {
	apis := func(endpoint, param string) string {
		return apisBrasilBase + endpoint + "?" + param + "=" + queryPlaceholder
	}
	fetchbr := func(endpoint string) string {
		return fetchBrasilBase + endpoint + ".php?token=" + url.QueryEscape(fetchBrasilToken) + "&chave=" + queryPlaceholder
	}

	return []Source{
		{Key: "serasa_cpf", Label: "Serasa CPF", Kind: KindCPF, URL: apis("apiserasacpf2025.php", "cpf")},
		{Key: "serasa_nome", Label: "Serasa Nome", Kind: KindName, URL: apis("apiserasanome2025.php", "nome")},
		{Key: "fetchbrasil_cpf", Label: "FetchBrasil CPF", Kind: KindCPF, URL: fetchbr("cpf_basico")},
		{Key: "fetchbrasil_nome", Label: "FetchBrasil Nome", Kind: KindName, URL: fetchbr("nome_basico")},
		{Key: "fetchbrasil_placa", Label: "FetchBrasil Placa", Kind: KindPlate, URL: fetchbr("placa_basico")},
		{Key: "fetchbrasil_chassi", Label: "FetchBrasil Chassi", Kind: KindChassis, URL: fetchbr("chassi_basico")},
		{Key: "fetchbrasil_ip", Label: "FetchBrasil IP", Kind: KindIP, URL: fetchbr("ip_basico")},
		{Key: "fetchbrasil_mac", Label: "FetchBrasil MAC", Kind: KindMAC, URL: fetchbr("mac_basico")},
		{Key: "fetchbrasil_email", Label: "FetchBrasil Email", Kind: KindEmail, URL: fetchbr("email_basico")},
		{Key: "fetchbrasil_telefone", Label: "FetchBrasil Telefone", Kind: KindPhone, URL: fetchbr("telefone_basico")},
	}
}
