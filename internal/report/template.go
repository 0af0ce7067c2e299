package report

import "html/template"

const (
	plotlyCDN     = "https://cdn.plot.ly/plotly-latest.min.js"
	leafletCSSCDN = "https://unpkg.com/leaflet@1.7.1/dist/leaflet.css"
	leafletJSCDN  = "https://unpkg.com/leaflet@1.7.1/dist/leaflet.js"
)

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="report-run-id" content="{{.RunID}}">
    <title>{{.Title}}</title>
    <script src="{{.PlotlyJS}}"></script>
    <link rel="stylesheet" href="{{.LeafletCSS}}"/>
    <script src="{{.LeafletJS}}"></script>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 1200px;
            margin: 0 auto;
            padding: 20px;
        }
        h1, h2 {
            color: #2c3e50;
            text-align: center;
        }
        .container {
            background-color: #f9f9f9;
            border-radius: 8px;
            padding: 20px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
            margin-bottom: 20px;
        }
        #plotly-graph {
            width: 100%;
            height: 900px;
        }
        .address {
            text-align: center;
            color: #666;
        }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="container">
        <h2>Location Map</h2>
        {{- if .Address}}
        <p class="address">{{.Address}}</p>
        {{- end}}
        {{.Map}}
    </div>
    <div class="container">
        <p>
            This visualization presents mock data for various climate parameters relevant to irrigation in {{.Name}}.
            The data spans from <span class="span-start">{{.Start}}</span> to <span class="span-end">{{.End}}</span>, including both historical and projected values.
            Please note that this is simulated data and should not be used for actual planning or decision-making.
        </p>
        <div id="plotly-graph"></div>
    </div>
    <script>
        var plotlyData = {{.Figure}};
        Plotly.newPlot('plotly-graph', plotlyData.data, plotlyData.layout);
    </script>
</body>
</html>
`))
