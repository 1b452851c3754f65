package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const graphqlEndpoint = "/graphql"

const playgroundPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>keta playground</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css" />
  <script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
</head>
<body>
  <div id="root"></div>
  <script>
    window.addEventListener('load', function () {
      GraphQLPlayground.init(document.getElementById('root'), { endpoint: '` + graphqlEndpoint + `' })
    })
  </script>
</body>
</html>
`

const graphiqlPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <title>keta graphiql</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql/graphiql.min.css" />
  <script crossorigin src="https://unpkg.com/react/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql/graphiql.min.js"></script>
</head>
<body style="margin: 0;">
  <div id="graphiql" style="height: 100vh;"></div>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: '` + graphqlEndpoint + `' });
    ReactDOM.render(React.createElement(GraphiQL, { fetcher: fetcher }), document.getElementById('graphiql'));
  </script>
</body>
</html>
`

func Playground(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(playgroundPage))
}

func GraphiQL(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(graphiqlPage))
}
