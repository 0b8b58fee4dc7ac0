package server

// demoPage embeds the widget fragment and refreshes it in place. The
// entering-class styles mirror what the cascade scheduling expects: new
// items start shifted and transparent, and slide in once the class is
// lifted, each honoring its inline transition delay.
const demoPage = `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="utf-8">
<title>mailpane demo</title>
<style>
  body { font-family: system-ui, sans-serif; background: #f4f5f7; margin: 2rem; }
  .widget-email__unread { width: 22rem; background: #fff; border-radius: 8px;
    box-shadow: 0 1px 4px rgba(0,0,0,.15); padding: 1rem; }
  .widget-email__title { font-weight: 600; margin-bottom: .5rem; }
  .widget-email__counter { background: #d93025; color: #fff; border-radius: 999px;
    padding: 0 .5em; margin-left: .5em; font-size: .8em; }
  .widget-email__list { list-style: none; margin: 0; padding: 0; }
  .widget-email__item { padding: .5rem 0; border-bottom: 1px solid #eee;
    transition: opacity .3s ease, transform .3s ease; }
  .widget-email__item--entering { opacity: 0; transform: translateX(-1rem); }
  .widget-email__item a { display: flex; gap: .5rem; align-items: center;
    color: inherit; text-decoration: none; }
  .widget-email__avatar { width: 32px; height: 32px; border-radius: 50%; }
  .widget-email__from { font-weight: 600; }
  .widget-email__subject { flex: 1; overflow: hidden; white-space: nowrap; }
  .widget-email__time { color: #888; font-size: .8em; }
  .widget-email__placeholder { color: #888; padding: .5rem 0; }
</style>
</head>
<body>
<div id="host"></div>
<script>
  const host = document.getElementById("host");
  async function refresh() {
    const resp = await fetch("/widget/unread");
    if (resp.ok) { host.innerHTML = await resp.text(); }
  }
  refresh();
  setInterval(refresh, 1000);
</script>
</body>
</html>
`
