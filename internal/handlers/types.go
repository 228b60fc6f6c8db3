package handlers

// ShortenRequest is the request for creating or reusing a short URL.
type ShortenRequest struct {
	Body struct {
		URL            string `doc:"The URL to shorten"                          example:"https://example.com/very/long/path" json:"url"                      minLength:"1"`
		UserID         string `doc:"The owner of the binding"                    example:"user-42"                            json:"userId"                   minLength:"1"`
		Alias          string `doc:"Custom short code"                           example:"docs"                               json:"alias,omitempty"          pattern:"^[A-Za-z0-9_-]{3,32}$" required:"false"`
		ExpirationDate string `doc:"Last day the binding is live, UTC, ISO date" example:"2030-12-31"                         json:"expirationDate,omitempty" format:"date"                   required:"false"`
	}
}

// ShortenResponse is the response for a shorten request.
type ShortenResponse struct {
	Body struct {
		Short          string  `doc:"The short code"                    example:"1A"                         json:"short"`
		Alias          *string `doc:"The alias bound to the URL, if any" example:"docs"                      json:"alias"`
		ExpirationDate *string `doc:"Last day the binding is live"       example:"2030-12-31"                json:"expirationDate"`
		ShortURL       string  `doc:"The full short URL"                example:"http://localhost:8888/1A"   json:"shortUrl"`
	}
}

// RedirectRequest is the request for redirecting a short code or alias.
type RedirectRequest struct {
	Code string `doc:"The short code or alias" example:"1A" path:"code"`
}

// RedirectResponse is the response for a redirect.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `header:"Location"`
	}
}
